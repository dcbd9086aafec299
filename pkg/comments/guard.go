package comments

import "sync"

// ProcessedSet remembers which modules were already synchronized during the
// life of a Synchronizer. It only grows; Reset exists for tests.
type ProcessedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewProcessedSet creates an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{seen: make(map[string]struct{})}
}

// ShouldProcess marks label and reports whether it was unmarked before.
func (p *ProcessedSet) ShouldProcess(label string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[label]; ok {
		return false
	}
	p.seen[label] = struct{}{}
	return true
}

// Contains reports whether label has been marked.
func (p *ProcessedSet) Contains(label string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[label]
	return ok
}

// Reset forgets every marked module.
func (p *ProcessedSet) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = make(map[string]struct{})
}
