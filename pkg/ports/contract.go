package ports

import (
	"testing"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPortRegistryContract runs a suite of tests to verify that a
// PortRegistry implementation adheres to the defined interface contract.
// newRegistry must return an empty registry on every call.
func RunPortRegistryContract(t *testing.T, newRegistry func() PortRegistry) {
	out := domain.OutputKey("step1", "data")
	in := domain.InputKey("step2", "value")

	t.Run("Set and Get", func(t *testing.T) {
		reg := newRegistry()

		changed := reg.SetPort(out, domain.Position{X: 10, Y: 20})
		assert.True(t, changed, "insert should change the registry")

		pos, ok := reg.GetPort(out)
		require.True(t, ok)
		assert.Equal(t, domain.Position{X: 10, Y: 20}, pos)

		_, ok = reg.GetPort(in)
		assert.False(t, ok, "unknown port should be absent")
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("Update Both Axes", func(t *testing.T) {
		reg := newRegistry()
		reg.SetPort(out, domain.Position{X: 10, Y: 20})

		assert.True(t, reg.SetPort(out, domain.Position{X: 11, Y: 21}))
		pos, _ := reg.GetPort(out)
		assert.Equal(t, domain.Position{X: 11, Y: 21}, pos)
	})

	t.Run("Coalesce When An Axis Is Unchanged", func(t *testing.T) {
		reg := newRegistry()
		reg.SetPort(out, domain.Position{X: 10, Y: 20})

		assert.False(t, reg.SetPort(out, domain.Position{X: 10, Y: 20}), "identical report")
		assert.False(t, reg.SetPort(out, domain.Position{X: 10, Y: 99}), "x unchanged")
		assert.False(t, reg.SetPort(out, domain.Position{X: 99, Y: 20}), "y unchanged")

		pos, _ := reg.GetPort(out)
		assert.Equal(t, domain.Position{X: 10, Y: 20}, pos)
	})

	t.Run("Unset", func(t *testing.T) {
		reg := newRegistry()
		reg.SetPort(out, domain.Position{X: 1, Y: 2})

		assert.True(t, reg.UnsetPort(out))
		assert.False(t, reg.UnsetPort(out), "second unset is a no-op")
		_, ok := reg.GetPort(out)
		assert.False(t, ok)
		assert.Equal(t, 0, reg.Len())
	})

	t.Run("Reinsert After Unset", func(t *testing.T) {
		reg := newRegistry()
		reg.SetPort(out, domain.Position{X: 1, Y: 2})
		reg.UnsetPort(out)

		assert.True(t, reg.SetPort(out, domain.Position{X: 1, Y: 5}))
		pos, _ := reg.GetPort(out)
		assert.Equal(t, domain.Position{X: 1, Y: 5}, pos)
	})

	t.Run("Ports", func(t *testing.T) {
		reg := newRegistry()
		reg.SetPort(in, domain.Position{X: 100, Y: 20})
		reg.SetPort(out, domain.Position{X: 10, Y: 20})

		assert.Equal(t, []domain.PortEntry{
			{Key: out, Position: domain.Position{X: 10, Y: 20}},
			{Key: in, Position: domain.Position{X: 100, Y: 20}},
		}, reg.Ports())
	})
}
