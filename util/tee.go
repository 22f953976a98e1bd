package util

import "sync"

// Tee distributes parameters to subscribers
type Tee struct {
	mu   sync.Mutex
	recv []chan<- Param
}

// Attach creates a new receiver channel and attaches it to the tee
func (t *Tee) Attach() <-chan Param {
	out := make(chan Param, 16)

	t.mu.Lock()
	t.recv = append(t.recv, out)
	t.mu.Unlock()

	return out
}

// Run starts parameter distribution
func (t *Tee) Run(in <-chan Param) {
	for p := range in {
		t.mu.Lock()
		for _, recv := range t.recv {
			recv <- p
		}
		t.mu.Unlock()
	}
}
