package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubauction/models"
)

// expiryRecorder claims and releases like the auction engine does
type expiryRecorder struct {
	mu       sync.Mutex
	registry *TimerRegistry
	fired    []time.Time
	stale    int
	done     chan models.ItemKey
}

func newExpiryRecorder() *expiryRecorder {
	rec := &expiryRecorder{done: make(chan models.ItemKey, 10)}
	rec.registry = NewTimerRegistry(rec.onExpire)
	return rec
}

func (r *expiryRecorder) onExpire(key models.ItemKey, gen uint64) {
	if !r.registry.Claim(key, gen) {
		r.mu.Lock()
		r.stale++
		r.mu.Unlock()
		return
	}
	r.mu.Lock()
	r.fired = append(r.fired, time.Now())
	r.mu.Unlock()
	r.registry.Release(key, gen)
	r.done <- key
}

func (r *expiryRecorder) firedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func TestTimerRegistry_FiresOnce(t *testing.T) {
	rec := newExpiryRecorder()
	key := models.NewItemKey(models.ItemTypeClub, 1)

	status := rec.registry.Arm(key, 20*time.Millisecond)
	assert.Equal(t, TimerArmed, status.State)
	assert.Equal(t, TimerArmed, rec.registry.State(key))

	select {
	case got := <-rec.done:
		assert.Equal(t, key, got)
	case <-time.After(time.Second):
		t.Fatal("countdown never fired")
	}

	assert.Equal(t, 1, rec.firedCount())
	assert.Equal(t, TimerIdle, rec.registry.State(key))
	assert.Empty(t, rec.registry.Active())
}

func TestTimerRegistry_RearmFiresOnceFromSecondArm(t *testing.T) {
	rec := newExpiryRecorder()
	key := models.NewItemKey(models.ItemTypeDuelist, 9)

	rec.registry.Arm(key, 60*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	secondArm := time.Now()
	rec.registry.Arm(key, 60*time.Millisecond)

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("countdown never fired")
	}

	// Give a stray first timer every chance to show up
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, 1, rec.firedCount())
	rec.mu.Lock()
	firedAt := rec.fired[0]
	rec.mu.Unlock()
	assert.GreaterOrEqual(t, firedAt.Sub(secondArm), 60*time.Millisecond)
}

func TestTimerRegistry_StaleGenerationCannotClaim(t *testing.T) {
	registry := NewTimerRegistry(func(models.ItemKey, uint64) {})
	key := models.NewItemKey(models.ItemTypeClub, 2)

	registry.Arm(key, time.Hour)
	first := registry.nextGen
	registry.Arm(key, time.Hour)
	second := registry.nextGen

	assert.False(t, registry.Claim(key, first))
	assert.True(t, registry.Claim(key, second))
	assert.Equal(t, TimerFired, registry.State(key))
	assert.False(t, registry.Claim(key, second), "a countdown fires at most once")

	registry.Release(key, first)
	assert.Equal(t, TimerFired, registry.State(key), "releasing a stale generation is a no-op")

	registry.Release(key, second)
	assert.Equal(t, TimerIdle, registry.State(key))
}

func TestTimerRegistry_CancelPreventsExpiry(t *testing.T) {
	rec := newExpiryRecorder()
	club := models.NewItemKey(models.ItemTypeClub, 3)
	duelist := models.NewItemKey(models.ItemTypeDuelist, 3)

	rec.registry.Arm(club, 20*time.Millisecond)
	assert.True(t, rec.registry.Cancel(club))
	assert.False(t, rec.registry.Cancel(club))

	rec.registry.Arm(club, 20*time.Millisecond)
	rec.registry.Arm(duelist, 20*time.Millisecond)
	assert.Equal(t, 2, rec.registry.CancelAll())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, rec.firedCount())
	assert.Empty(t, rec.registry.Active())
}

func TestTimerRegistry_ActiveSortedByDeadline(t *testing.T) {
	registry := NewTimerRegistry(func(models.ItemKey, uint64) {})
	late := models.NewItemKey(models.ItemTypeClub, 1)
	soon := models.NewItemKey(models.ItemTypeClub, 2)

	registry.Arm(late, time.Hour)
	registry.Arm(soon, time.Minute)
	defer registry.CancelAll()

	active := registry.Active()
	require.Len(t, active, 2)
	assert.Equal(t, soon, active[0].Key)
	assert.Equal(t, late, active[1].Key)

	status, ok := registry.Status(late)
	require.True(t, ok)
	assert.Equal(t, time.Hour, status.Duration)
}
