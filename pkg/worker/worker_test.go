package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var count atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() {
			count.Add(1)
		})
	}
	p.Wait()

	assert.Equal(t, int64(100), count.Load())
}

func TestPool_SlowTaskDoesNotBlockOthers(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	done := make(chan struct{})
	p.Submit(func() {
		time.Sleep(300 * time.Millisecond)
	})
	p.Submit(func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("fast task was blocked behind the slow one")
	}
	p.Wait()
}

func TestPool_WaitIsReusableAcrossBatches(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	var count atomic.Int64
	for batch := 0; batch < 3; batch++ {
		for i := 0; i < 10; i++ {
			p.Submit(func() { count.Add(1) })
		}
		p.Wait()
	}
	assert.Equal(t, int64(30), count.Load())
}
