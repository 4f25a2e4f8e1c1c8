package services

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/threadloom/threadloom/internal/media"
)

// removeObjects deletes stored media objects, skipping empty URLs. Failures
// are collected so one unreachable object does not hide the rest.
func removeObjects(ctx context.Context, store media.Store, objectURLs ...string) error {
	var errs error
	for _, objectURL := range objectURLs {
		if objectURL == "" {
			continue
		}
		if err := store.Remove(ctx, objectURL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", objectURL, err))
		}
	}
	return errs
}
