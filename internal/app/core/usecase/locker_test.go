package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountLocks_ReleasesEntries(t *testing.T) {
	locks := NewAccountLocks()

	unlock := locks.Lock("b", "a", "a")
	assert.Equal(t, 2, locks.size())
	unlock()
	assert.Zero(t, locks.size())
}

func TestAccountLocks_SerializesSameID(t *testing.T) {
	locks := NewAccountLocks()
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("acc")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.size())
}

func TestAccountLocks_OppositeOrderDoesNotDeadlock(t *testing.T) {
	locks := NewAccountLocks()
	done := make(chan struct{})

	go func() {
		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var unlock func()
				if i%2 == 0 {
					unlock = locks.Lock("x", "y")
				} else {
					unlock = locks.Lock("y", "x")
				}
				unlock()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock")
	}
}
