package transitions

import (
	"context"
	"time"

	"termshift/internal/domain"
	"termshift/internal/store"
)

// Resolver extracts the effective date for a (content item, schedule)
// pair. Values that fail every parse attempt count as not found; the
// resolver never falls back to comparing raw field values.
type Resolver struct {
	content store.ContentSource
	loc     *time.Location
}

func NewResolver(content store.ContentSource, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{content: content, loc: loc}
}

// Resolve returns the schedule's date for the item. now feeds the
// any_past selection rule; it is ignored for single sources.
func (r *Resolver) Resolve(ctx context.Context, itemID int64, sched domain.Schedule, now time.Time) (domain.ResolvedDate, error) {
	if sched.SourceKind == domain.SourceKindRepeating {
		return r.resolveRepeating(ctx, itemID, sched, now)
	}
	return r.resolveSingle(ctx, itemID, sched)
}

func (r *Resolver) resolveSingle(ctx context.Context, itemID int64, sched domain.Schedule) (domain.ResolvedDate, error) {
	raw, found, err := r.content.SingleValue(ctx, sched.DateSource, itemID)
	if err != nil {
		return domain.ResolvedDate{}, err
	}
	if !found {
		return domain.ResolvedDate{}, nil
	}

	t, ok := domain.ParseDate(raw, r.loc)
	if !ok {
		return domain.ResolvedDate{}, nil
	}
	return domain.ResolvedDate{Time: t, Found: true}, nil
}

func (r *Resolver) resolveRepeating(ctx context.Context, itemID int64, sched domain.Schedule, now time.Time) (domain.ResolvedDate, error) {
	rows, err := r.content.RepeatingValues(ctx, sched.DateSource, itemID)
	if err != nil {
		return domain.ResolvedDate{}, err
	}

	dates := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		raw := row[sched.DateSubfield]
		if raw == "" {
			continue
		}
		if t, ok := domain.ParseDate(raw, r.loc); ok {
			dates = append(dates, t)
		}
	}

	t, ok := domain.SelectDate(dates, sched.SelectionRule, now)
	if !ok {
		return domain.ResolvedDate{}, nil
	}
	return domain.ResolvedDate{Time: t, Found: true}, nil
}
