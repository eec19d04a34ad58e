package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"termshift/internal/store"
)

type contentItem struct {
	bun.BaseModel `bun:"table:content_items"`

	ID          int64  `bun:"id,pk,autoincrement"`
	ContentType string `bun:"content_type,notnull"`
	Status      string `bun:"status,notnull"`
	Title       string `bun:"title"`
}

type contentType struct {
	bun.BaseModel `bun:"table:content_types"`

	Name string `bun:"name,pk"`
}

type itemFieldValue struct {
	bun.BaseModel `bun:"table:item_field_values"`

	ItemID  int64  `bun:"item_id,pk"`
	FieldID string `bun:"field_id,pk"`
	Value   string `bun:"value,notnull"`
}

type itemFieldRow struct {
	bun.BaseModel `bun:"table:item_field_rows"`

	ItemID   int64  `bun:"item_id,pk"`
	FieldID  string `bun:"field_id,pk"`
	RowIndex int    `bun:"row_index,pk"`
	Subfield string `bun:"subfield,pk"`
	Value    string `bun:"value,notnull"`
}

type axis struct {
	bun.BaseModel `bun:"table:axes"`

	Name string `bun:"name,pk"`
}

type axisLabel struct {
	bun.BaseModel `bun:"table:axis_labels"`

	Axis  string `bun:"axis,pk"`
	Label string `bun:"label,pk"`
}

type itemLabel struct {
	bun.BaseModel `bun:"table:item_labels"`

	ItemID int64  `bun:"item_id,pk"`
	Axis   string `bun:"axis,pk"`
	Label  string `bun:"label,notnull"`
}

const statusPublished = "published"

// ContentRepo is the postgres-backed content source and label assigner:
// items with single-valued fields, ordered repeating field rows, and
// exclusive per-axis labels.
type ContentRepo struct {
	db *bun.DB
}

func NewContentRepo(db *bun.DB) *ContentRepo {
	return &ContentRepo{db: db}
}

func (r *ContentRepo) ContentTypeOf(ctx context.Context, itemID int64) (string, error) {
	var item contentItem
	err := r.db.NewSelect().
		Model(&item).
		Column("content_type").
		Where("id = ?", itemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", err
	}
	return item.ContentType, nil
}

func (r *ContentRepo) ContentTypeExists(ctx context.Context, name string) (bool, error) {
	return r.db.NewSelect().
		Model((*contentType)(nil)).
		Where("name = ?", name).
		Exists(ctx)
}

func (r *ContentRepo) SingleValue(ctx context.Context, fieldID string, itemID int64) (string, bool, error) {
	var row itemFieldValue
	err := r.db.NewSelect().
		Model(&row).
		Where("item_id = ?", itemID).
		Where("field_id = ?", fieldID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if row.Value == "" {
		return "", false, nil
	}
	return row.Value, true, nil
}

func (r *ContentRepo) RepeatingValues(ctx context.Context, fieldID string, itemID int64) ([]map[string]string, error) {
	var rows []itemFieldRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("item_id = ?", itemID).
		Where("field_id = ?", fieldID).
		OrderExpr("row_index ASC, subfield ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return groupFieldRows(rows), nil
}

// groupFieldRows folds flat (row_index, subfield, value) rows into the
// ordered row maps the resolver consumes. Rows must arrive sorted by
// row_index.
func groupFieldRows(rows []itemFieldRow) []map[string]string {
	if len(rows) == 0 {
		return nil
	}

	out := make([]map[string]string, 0, 4)
	lastIndex := -1
	var current map[string]string
	for _, row := range rows {
		if row.RowIndex != lastIndex {
			current = make(map[string]string, 2)
			out = append(out, current)
			lastIndex = row.RowIndex
		}
		current[row.Subfield] = row.Value
	}
	return out
}

func (r *ContentRepo) FindItems(ctx context.Context, contentTypeName, axisName, label string) ([]int64, error) {
	var ids []int64
	err := r.db.NewSelect().
		Model((*contentItem)(nil)).
		Column("content_item.id").
		Join("JOIN item_labels AS il ON il.item_id = content_item.id").
		Where("content_item.content_type = ?", contentTypeName).
		Where("content_item.status = ?", statusPublished).
		Where("il.axis = ?", axisName).
		Where("il.label = ?", label).
		OrderExpr("content_item.id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ContentRepo) AxisExists(ctx context.Context, name string) (bool, error) {
	return r.db.NewSelect().
		Model((*axis)(nil)).
		Where("name = ?", name).
		Exists(ctx)
}

func (r *ContentRepo) LabelExists(ctx context.Context, label, axisName string) (bool, error) {
	return r.db.NewSelect().
		Model((*axisLabel)(nil)).
		Where("axis = ?", axisName).
		Where("label = ?", label).
		Exists(ctx)
}

// SetExclusiveLabel replaces whatever the item holds on the axis with
// exactly one label. Delete-then-insert in a transaction keeps the call
// idempotent and rules out two labels coexisting on the axis.
func (r *ContentRepo) SetExclusiveLabel(ctx context.Context, itemID int64, axisName, label string) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*itemLabel)(nil)).
			Where("item_id = ?", itemID).
			Where("axis = ?", axisName).
			Exec(ctx)
		if err != nil {
			return err
		}

		row := itemLabel{ItemID: itemID, Axis: axisName, Label: label}
		_, err = tx.NewInsert().Model(&row).Exec(ctx)
		return err
	})
}
