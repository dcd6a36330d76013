package app

import (
	"sync"
	"time"
)

// TimerManager owns at most one live countdown per key. Scheduling under an
// occupied key first discards the existing countdown, so a key can never
// deliver duplicate expirations. A cancel that wins the race against the
// final tick suppresses the expiry entirely.
type TimerManager struct {
	interval time.Duration

	mu     sync.Mutex
	timers map[string]*countdown
}

type countdown struct {
	remaining int
	stop      chan struct{}
}

func NewTimerManager() *TimerManager {
	return NewTimerManagerWithInterval(time.Second)
}

// NewTimerManagerWithInterval lets tests run countdowns faster than 1 Hz.
func NewTimerManagerWithInterval(interval time.Duration) *TimerManager {
	return &TimerManager{
		interval: interval,
		timers:   make(map[string]*countdown),
	}
}

// Schedule installs a fresh countdown under key, replacing any existing one.
// onTick is invoked once per interval with the remaining seconds; onExpire is
// invoked exactly once when the countdown reaches zero, after which the
// timer self-removes.
func (m *TimerManager) Schedule(key string, seconds int, onTick func(remaining int), onExpire func()) {
	c := &countdown{remaining: seconds, stop: make(chan struct{})}

	m.mu.Lock()
	if prev, ok := m.timers[key]; ok {
		close(prev.stop)
	}
	m.timers[key] = c
	m.mu.Unlock()

	go m.run(key, c, onTick, onExpire)
}

// Cancel stops the countdown under key if one exists. Idempotent.
func (m *TimerManager) Cancel(key string) {
	m.mu.Lock()
	if c, ok := m.timers[key]; ok {
		close(c.stop)
		delete(m.timers, key)
	}
	m.mu.Unlock()
}

// Remaining reports the seconds left on the countdown under key.
func (m *TimerManager) Remaining(key string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.timers[key]; ok {
		return c.remaining, true
	}
	return 0, false
}

func (m *TimerManager) run(key string, c *countdown, onTick func(int), onExpire func()) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			// The map entry is the source of truth: if this countdown was
			// cancelled or replaced, it must not fire anything further,
			// even when the stop signal and the tick raced.
			if m.timers[key] != c {
				m.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			if remaining <= 0 {
				delete(m.timers, key)
			}
			m.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if remaining <= 0 {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}
