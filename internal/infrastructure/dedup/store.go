package dedup

import (
	"context"
	"time"
)

// DeliveryStore tracks seen delivery identifiers and pipeline completion.
// CheckAndSet must be atomic: two concurrent calls with the same id must not
// both observe "not seen".
type DeliveryStore interface {
	// CheckAndSet records the id if absent and reports whether it was
	// already present. The entry expires after ttl.
	CheckAndSet(ctx context.Context, deliveryID string, ttl time.Duration) (seen bool, err error)

	// MarkProcessed records that the pipeline completed for the id.
	MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) error

	// ProcessedAt reports whether and when the pipeline completed for the id.
	ProcessedAt(ctx context.Context, deliveryID string) (time.Time, bool, error)
}
