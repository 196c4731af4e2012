package sensor

import (
	"sync"
	"time"
)

// Source is polled once per loop iteration for "motion present".
type Source interface {
	Poll() (Reading, error)
	Close() error
}

// Latch is a Source fed by motion messages. Each pulse is reported as one
// true reading by the next poll, followed by false.
type Latch struct {
	mu      sync.Mutex
	pending bool
	now     func() time.Time
}

func NewLatch() *Latch {
	return &Latch{now: time.Now}
}

func (self *Latch) Pulse() {
	self.mu.Lock()
	self.pending = true
	self.mu.Unlock()
}

func (self *Latch) Poll() (Reading, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	r := Reading{Value: self.pending, At: self.now()}
	self.pending = false
	return r, nil
}

func (self *Latch) Close() error {
	return nil
}
