package sinkcore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryCounter_ZeroValue(t *testing.T) {
	var c DeliveryCounter

	stats := c.Snapshot()
	assert.Zero(t, stats.Shipped)
	assert.Zero(t, stats.Failed)
	assert.Zero(t, stats.Dropped)
}

func TestDeliveryCounter_Accumulates(t *testing.T) {
	var c DeliveryCounter

	c.AddShipped(3)
	c.AddShipped(2)
	c.AddFailed(1)
	c.AddDropped(4)

	stats := c.Snapshot()
	assert.Equal(t, int64(5), stats.Shipped)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(4), stats.Dropped)
}

func TestDeliveryCounter_Concurrent(t *testing.T) {
	var c DeliveryCounter

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddShipped(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), c.Snapshot().Shipped)
}
