package runtime_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

type recordingSink struct {
	mu          sync.Mutex
	submissions []domain.Submission
	err         error
}

func (s *recordingSink) Submit(ctx context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
	return s.err
}

func staticLocator(pos domain.Position) ports.Locator {
	return ports.LocatorFunc(func(ctx context.Context, opts ports.LocateOptions) (domain.Position, error) {
		return pos, nil
	})
}

var errDenied = errors.New("permission denied")

func failingLocator(err error) ports.Locator {
	return ports.LocatorFunc(func(ctx context.Context, opts ports.LocateOptions) (domain.Position, error) {
		return domain.Position{}, err
	})
}

// blockingLocator waits for ctx to end.
func blockingLocator() ports.Locator {
	return ports.LocatorFunc(func(ctx context.Context, opts ports.LocateOptions) (domain.Position, error) {
		<-ctx.Done()
		return domain.Position{}, ctx.Err()
	})
}
