package util

import (
	"fmt"
	"sync"
	"time"
)

// Waiter monitors reception of an initial value and staleness of subsequent updates
type Waiter struct {
	sync.Mutex
	cond    *sync.Cond
	updated time.Time
	initial time.Duration // max wait for the initial value
	timeout time.Duration // staleness timeout, 0 to disable
}

// NewWaiter creates new waiter
func NewWaiter(initial, timeout time.Duration) *Waiter {
	p := &Waiter{
		initial: initial,
		timeout: timeout,
	}
	p.cond = sync.NewCond(p)
	return p
}

// Update is called when client has received data. Update resets the staleness counter.
// It is client responsibility to ensure that the waiter is not locked when Update is called.
func (p *Waiter) Update() {
	p.updated = time.Now()
	p.cond.Broadcast()
}

// Overdue waits for the initial update and returns an error if either the
// initial wait or the staleness timeout is exceeded.
// Waiter MUST be locked when calling Overdue.
func (p *Waiter) Overdue() error {
	if p.updated.IsZero() {
		c := make(chan struct{})

		go func() {
			defer close(c)
			for p.updated.IsZero() {
				p.cond.Wait()
			}
		}()

		select {
		case <-c:
			// initial value received, lock established
			return nil
		case <-time.After(p.initial):
			p.Update()              // unblock the sync.Cond
			<-c                     // wait for goroutine, re-establish lock
			p.updated = time.Time{} // reset updated to initial value missing
			return fmt.Errorf("initial value timeout: %v", p.initial)
		}
	}

	if elapsed := time.Since(p.updated); p.timeout != 0 && elapsed > p.timeout {
		return fmt.Errorf("stale value: %v", elapsed.Round(time.Second))
	}

	return nil
}
