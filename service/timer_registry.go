package service

import (
	"sort"
	"sync"
	"time"

	"clubauction/models"
)

// TimerState is the countdown state of one item
type TimerState string

const (
	TimerIdle  TimerState = "idle"
	TimerArmed TimerState = "armed"
	TimerFired TimerState = "fired"
)

// ExpiryFunc is invoked on its own goroutine when a countdown runs out.
// The generation identifies which arm produced the expiry; the handler must
// Claim it before acting, which fails for any countdown re-armed or
// cancelled in the meantime.
type ExpiryFunc func(key models.ItemKey, generation uint64)

// TimerRegistry owns one countdown per item key.
// Idle -> Armed -> (Armed on re-arm) -> Fired -> Idle.
type TimerRegistry struct {
	mu       sync.Mutex
	entries  map[models.ItemKey]*countdown
	nextGen  uint64
	onExpire ExpiryFunc
}

type countdown struct {
	generation uint64
	state      TimerState
	duration   time.Duration
	deadline   time.Time
	timer      *time.Timer
}

// RoundStatus describes an item's running countdown
type RoundStatus struct {
	Key      models.ItemKey
	State    TimerState
	Duration time.Duration
	EndsAt   time.Time
}

// NewTimerRegistry creates an empty registry calling onExpire for every expiry
func NewTimerRegistry(onExpire ExpiryFunc) *TimerRegistry {
	return &TimerRegistry{
		entries:  make(map[models.ItemKey]*countdown),
		onExpire: onExpire,
	}
}

// Arm starts a countdown for key, replacing any existing one. The replaced
// countdown can no longer be claimed once Arm returns.
func (r *TimerRegistry) Arm(key models.ItemKey, d time.Duration) RoundStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok && existing.timer != nil {
		existing.timer.Stop()
	}

	r.nextGen++
	gen := r.nextGen

	entry := &countdown{
		generation: gen,
		state:      TimerArmed,
		duration:   d,
		deadline:   time.Now().Add(d),
	}
	entry.timer = time.AfterFunc(d, func() {
		r.onExpire(key, gen)
	})
	r.entries[key] = entry

	return entry.status(key)
}

// Claim moves the countdown from Armed to Fired if generation is still current
func (r *TimerRegistry) Claim(key models.ItemKey, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok || entry.generation != generation || entry.state != TimerArmed {
		return false
	}
	entry.state = TimerFired
	return true
}

// Release drops a fired countdown, returning the key to Idle
func (r *TimerRegistry) Release(key models.ItemKey, generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[key]; ok && entry.generation == generation {
		delete(r.entries, key)
	}
}

// Cancel stops the key's countdown without firing it
func (r *TimerRegistry) Cancel(key models.ItemKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(r.entries, key)
	return true
}

// CancelAll stops every countdown without firing any, returning how many were running
func (r *TimerRegistry) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	for key, entry := range r.entries {
		entry.timer.Stop()
		delete(r.entries, key)
	}
	return n
}

// State returns the key's countdown state
func (r *TimerRegistry) State(key models.ItemKey) TimerState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[key]; ok {
		return entry.state
	}
	return TimerIdle
}

// Status returns the key's countdown, if any
func (r *TimerRegistry) Status(key models.ItemKey) (RoundStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return RoundStatus{Key: key, State: TimerIdle}, false
	}
	return entry.status(key), true
}

// Active returns every running countdown, soonest deadline first
func (r *TimerRegistry) Active() []RoundStatus {
	r.mu.Lock()
	statuses := make([]RoundStatus, 0, len(r.entries))
	for key, entry := range r.entries {
		statuses = append(statuses, entry.status(key))
	}
	r.mu.Unlock()

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].EndsAt.Before(statuses[j].EndsAt)
	})
	return statuses
}

func (c *countdown) status(key models.ItemKey) RoundStatus {
	return RoundStatus{
		Key:      key,
		State:    c.state,
		Duration: c.duration,
		EndsAt:   c.deadline,
	}
}
