package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tabgroups/tabgroups/internal/domain"
)

// ErrNotWatchable is returned by Watch for backends without change detection
var ErrNotWatchable = errors.New("backend does not support change detection")

// Watch publishes the keys changed by writers outside this Store. It takes
// an initial snapshot synchronously and then runs until ctx is cancelled;
// the returned channel is closed when the watch loop exits.
func Watch(ctx context.Context, s *Store, publisher domain.UpdatePublisher, logger domain.Logger) (<-chan struct{}, error) {
	watchable, ok := s.backend.(Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}

	changes, err := watchable.Changes(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting change detection: %w", err)
	}

	if err := s.observe(ctx, nil); err != nil {
		return nil, fmt.Errorf("reading initial preferences: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				err := s.observe(ctx, func(update domain.Update) {
					if logger != nil {
						logger.Debug("preferences changed outside this process", "keys", update.Keys())
					}
					publisher.Publish(update)
				})
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					if logger != nil {
						logger.Warn("failed to re-read preferences", "err", err)
					}
				}
			}
		}
	}()
	return done, nil
}
