package store

import (
	"context"
	"time"
)

// BlobStore persists opaque values under fixed keys. The schedule
// collection is stored as one serialized blob.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// ContentSource exposes the host content system: item lookup, field
// values and repeating field groups.
type ContentSource interface {
	// ContentTypeOf returns the content type of an item, or ErrNotFound.
	ContentTypeOf(ctx context.Context, itemID int64) (string, error)

	// ContentTypeExists reports whether the type is registered.
	ContentTypeExists(ctx context.Context, contentType string) (bool, error)

	// SingleValue returns the raw value of a single-valued field on an
	// item. The bool is false when the field is absent or empty.
	SingleValue(ctx context.Context, fieldID string, itemID int64) (string, bool, error)

	// RepeatingValues returns the ordered rows of a repeating field
	// group, each row a subfield-id to raw-value mapping.
	RepeatingValues(ctx context.Context, fieldID string, itemID int64) ([]map[string]string, error)

	// FindItems returns ids of published items of the given type
	// currently holding label on axis.
	FindItems(ctx context.Context, contentType, axis, label string) ([]int64, error)
}

// LabelAssigner manages category-axis labels on items.
type LabelAssigner interface {
	AxisExists(ctx context.Context, axis string) (bool, error)
	LabelExists(ctx context.Context, label, axis string) (bool, error)

	// SetExclusiveLabel replaces all labels on the axis with exactly the
	// one given. Applying the same label twice is a no-op.
	SetExclusiveLabel(ctx context.Context, itemID int64, axis, label string) error
}

// TriggerRegistrar arms and disarms the periodic tick that drives batch
// runs. Both operations are idempotent.
type TriggerRegistrar interface {
	Arm(interval time.Duration) error
	Disarm()
}
