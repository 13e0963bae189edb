package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/msg2-etl/internal/domain"
)

// MultiLoader fans each batch out to several loaders in order. It stops at
// the first failure; loaders earlier in the list may already hold the batch,
// so every loader must tolerate replays.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, records []domain.DecodedRecord) error {
	for i, l := range m {
		if err := l.LoadBatch(ctx, records); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
