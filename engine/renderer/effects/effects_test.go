package effects

import (
	"testing"

	"github.com/spaghettifunk/retina/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultManagerResolvesBuiltins(t *testing.T) {
	m := NewDefaultManager()
	for _, name := range []string{TechniqueMesh, TechniqueLines, TechniqueLight, TechniqueOutline, TechniqueBackground, TechniqueScreenSpaced} {
		tech, err := m.Technique(name)
		require.NoError(t, err, name)
		_, ok := tech.Pass("")
		assert.True(t, ok, name)
	}
	assert.Len(t, m.Names(), 6)
}

func TestManagerErrors(t *testing.T) {
	m := NewManager()
	_, err := m.Technique("missing")
	assert.ErrorIs(t, err, core.ErrTechniqueNotFound)

	require.NoError(t, m.Register(&Technique{Name: "custom"}))
	assert.ErrorIs(t, m.Register(&Technique{Name: "custom"}), core.ErrDuplicateTechnique)
	assert.ErrorIs(t, m.Register(&Technique{}), core.ErrInvalidConfig)

	tech, err := m.Technique("custom")
	require.NoError(t, err)
	_, ok := tech.Pass("")
	assert.False(t, ok)
}

func TestTechniquePassByName(t *testing.T) {
	tech, err := NewDefaultManager().Technique(TechniqueMesh)
	require.NoError(t, err)
	p, ok := tech.Pass("transparent")
	require.True(t, ok)
	assert.False(t, p.DepthTest)
	_, ok = tech.Pass("nope")
	assert.False(t, ok)
}
