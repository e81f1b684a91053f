//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders a few testbed frames and writes the last one to frame.png.
func (Run) Testbed() error {
	mg.Deps(Build.All)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/retina", withArgs("-frames", "120", "-out", "frame.png"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed against retina.toml and reloads it on every save.
func (Run) Watch() error {
	mg.Deps(Build.All)
	_, err := executeCmd("bin/retina", withArgs("-config", "retina.toml", "-watch"), withStream())
	return err
}
