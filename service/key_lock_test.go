package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clubauction/models"
)

func TestKeyLocker_SerializesSameKey(t *testing.T) {
	locker := newKeyLocker()
	key := models.NewItemKey(models.ItemTypeClub, 1)

	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(key)
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locker.size(), "idle keys are released")
}

func TestKeyLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := newKeyLocker()

	unlockClub := locker.Lock(models.NewItemKey(models.ItemTypeClub, 1))
	defer unlockClub()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(models.NewItemKey(models.ItemTypeDuelist, 1))
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}
