//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Vets and builds every package, then the testbed binary.
func (Build) All() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/retina", "."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the whole test suite with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs the tests of a single package, e.g. mage test:pkg engine/scene.
func (Test) Pkg(pkg string) error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "-v", "./"+pkg), withStream())
	return err
}
