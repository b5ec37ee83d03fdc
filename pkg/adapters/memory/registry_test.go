package memory_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cacheflow/pkg/adapters/memory"
	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/ports"
)

func TestRegistry_Contract(t *testing.T) {
	ports.RunPortRegistryContract(t, func() ports.PortRegistry {
		return memory.NewRegistry()
	})
}

func TestRegistry_ConcurrentReports(t *testing.T) {
	reg := memory.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := domain.InputKey("step", string(rune('a'+i%26)))
			reg.SetPort(key, domain.Position{X: float64(i), Y: float64(i)})
			reg.GetPort(key)
			reg.Ports()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 26, reg.Len())
}
