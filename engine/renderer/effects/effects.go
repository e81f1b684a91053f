package effects

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/spaghettifunk/retina/engine/renderer/metadata"
)

const (
	TechniqueMesh         = "RenderMesh"
	TechniqueLines        = "RenderLines"
	TechniqueLight        = "RenderLight"
	TechniqueOutline      = "RenderMeshOutline"
	TechniqueBackground   = "RenderBackground"
	TechniqueScreenSpaced = "RenderScreenSpaced"
)

/**
 * @brief One pipeline configuration of a technique.
 */
type Pass struct {
	Name      string
	CullMode  metadata.FaceCullMode
	DepthTest bool
	Lit       bool
	Outline   bool
	LineWidth float32
}

/**
 * @brief A named set of passes a render core is bound to.
 */
type Technique struct {
	Name   string
	Passes []Pass
}

// Pass returns the named pass, or the first pass when name is empty.
func (t *Technique) Pass(name string) (Pass, bool) {
	if len(t.Passes) == 0 {
		return Pass{}, false
	}
	if name == "" {
		return t.Passes[0], true
	}
	for _, p := range t.Passes {
		if p.Name == name {
			return p, true
		}
	}
	return Pass{}, false
}

// Manager resolves technique names. It is shared by every node of a host.
type Manager struct {
	mu         sync.RWMutex
	techniques map[string]*Technique
}

func NewManager() *Manager {
	return &Manager{techniques: make(map[string]*Technique)}
}

// NewDefaultManager returns a manager holding the built-in techniques.
func NewDefaultManager() *Manager {
	m := NewManager()
	for _, t := range defaultTechniques() {
		_ = m.Register(t)
	}
	return m
}

func (m *Manager) Register(t *Technique) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("technique without name: %w", core.ErrInvalidConfig)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.techniques[t.Name]; ok {
		return fmt.Errorf("technique %q: %w", t.Name, core.ErrDuplicateTechnique)
	}
	m.techniques[t.Name] = t
	return nil
}

func (m *Manager) Technique(name string) (*Technique, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.techniques[name]
	if !ok {
		return nil, fmt.Errorf("technique %q: %w", name, core.ErrTechniqueNotFound)
	}
	return t, nil
}

func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.techniques))
	for n := range m.techniques {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func defaultTechniques() []*Technique {
	return []*Technique{
		{Name: TechniqueMesh, Passes: []Pass{
			{Name: "default", CullMode: metadata.FaceCullModeBack, DepthTest: true, Lit: true},
			{Name: "transparent", CullMode: metadata.FaceCullModeNone, DepthTest: false, Lit: true},
		}},
		{Name: TechniqueLines, Passes: []Pass{
			{Name: "default", CullMode: metadata.FaceCullModeNone, DepthTest: true, LineWidth: 2},
		}},
		{Name: TechniqueLight, Passes: []Pass{{Name: "default"}}},
		{Name: TechniqueOutline, Passes: []Pass{
			{Name: "default", CullMode: metadata.FaceCullModeBack, Outline: true, LineWidth: 3},
		}},
		{Name: TechniqueBackground, Passes: []Pass{
			{Name: "default", CullMode: metadata.FaceCullModeNone},
		}},
		{Name: TechniqueScreenSpaced, Passes: []Pass{
			{Name: "default", CullMode: metadata.FaceCullModeBack, DepthTest: true, Lit: true},
		}},
	}
}
