package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/spotlist/pkg/domain"
)

// Collector is a SubmissionSink that keeps every record in memory.
// Hosts use it to serve completed submissions back to the client.
type Collector struct {
	mu    sync.RWMutex
	items []domain.Submission
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Submit records the submission.
func (c *Collector) Submit(ctx context.Context, sub domain.Submission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, sub)
	return nil
}

// All returns the submissions in arrival order.
func (c *Collector) All() []domain.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Last returns the most recent submission of a session.
func (c *Collector) Last(sessionID string) (domain.Submission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].SessionID == sessionID {
			return c.items[i], true
		}
	}
	return domain.Submission{}, false
}
