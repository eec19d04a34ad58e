package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type kvBlob struct {
	bun.BaseModel `bun:"table:kv_blobs"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BlobRepo persists opaque blobs in a key/value table. The schedule
// collection lives under a single key.
type BlobRepo struct {
	db *bun.DB
}

func NewBlobRepo(db *bun.DB) *BlobRepo {
	return &BlobRepo{db: db}
}

func (r *BlobRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var row kvBlob
	err := r.db.NewSelect().
		Model(&row).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.Value, true, nil
}

func (r *BlobRepo) Save(ctx context.Context, key string, value []byte) error {
	row := kvBlob{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
