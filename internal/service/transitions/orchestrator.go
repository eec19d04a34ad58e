package transitions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"termshift/internal/domain"
	"termshift/internal/store"
)

type scheduleSource interface {
	List(ctx context.Context) ([]domain.Schedule, error)
	ForContentType(ctx context.Context, contentType string) ([]domain.Schedule, error)
}

// Orchestrator drives the transition engine across content items for
// the three triggers: item save, periodic tick and manual run. It owns
// no timers; external callers invoke it.
type Orchestrator struct {
	schedules scheduleSource
	resolver  *Resolver
	engine    *Engine
	content   store.ContentSource
	labels    store.LabelAssigner
	log       *slog.Logger
	now       func() time.Time
}

func NewOrchestrator(
	schedules scheduleSource,
	resolver *Resolver,
	engine *Engine,
	content store.ContentSource,
	labels store.LabelAssigner,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		schedules: schedules,
		resolver:  resolver,
		engine:    engine,
		content:   content,
		labels:    labels,
		log:       log.With(slog.String("component", "orchestrator")),
		now:       time.Now,
	}
}

// CategorizeOnSave labels a just-saved item immediately, with no buffer
// and no check of its current bucket. Items whose date cannot be
// resolved are left untouched so a manually assigned label survives.
// Callers must only pass ids of real, addressable content items.
func (o *Orchestrator) CategorizeOnSave(ctx context.Context, itemID int64) error {
	itemLog := o.log.With(slog.Int64("item_id", itemID))

	contentType, err := o.content.ContentTypeOf(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			itemLog.Warn("item not found; skipping categorize-on-save")
			return nil
		}
		return err
	}

	scheds, err := o.schedules.ForContentType(ctx, contentType)
	if err != nil {
		return err
	}

	now := o.now()
	for _, sched := range scheds {
		log := itemLog.With(slog.String("schedule", sched.Name))

		ok, err := o.labels.AxisExists(ctx, sched.CategoryAxis)
		if err != nil {
			log.Error("axis lookup failed", slog.Any("err", err))
			continue
		}
		if !ok {
			log.Warn("category axis does not exist; skipping schedule",
				slog.String("axis", sched.CategoryAxis))
			continue
		}

		resolved, err := o.resolver.Resolve(ctx, itemID, sched, now)
		if err != nil {
			log.Error("date resolution failed", slog.Any("err", err))
			continue
		}
		if !resolved.Found {
			continue
		}

		label := o.engine.Decide(resolved.Time, now, sched)
		if err := o.engine.Apply(ctx, itemID, sched.CategoryAxis, label); err != nil {
			log.Error("label assignment failed", slog.String("label", label), slog.Any("err", err))
		}
	}
	return nil
}

// ProcessAll is the periodic-tick entry point: one buffered batch pass
// over every schedule.
func (o *Orchestrator) ProcessAll(ctx context.Context) error {
	_, err := o.runAll(ctx)
	return err
}

// RunManual runs the same batch pass synchronously and returns, per
// schedule name, how many items it transitioned.
func (o *Orchestrator) RunManual(ctx context.Context) (map[string]int, error) {
	return o.runAll(ctx)
}

// runAll moves items out of the upcoming bucket once their date has
// passed the buffer. Items already labeled past are never re-examined;
// nothing an individual schedule or item does aborts the run.
func (o *Orchestrator) runAll(ctx context.Context) (map[string]int, error) {
	scheds, err := o.schedules.List(ctx)
	if err != nil {
		return nil, err
	}

	runLog := o.log.With(slog.String("run_id", uuid.NewString()))
	now := o.now()
	counts := make(map[string]int, len(scheds))

	for _, sched := range scheds {
		log := runLog.With(slog.String("schedule", sched.Name))
		if _, ok := counts[sched.Name]; !ok {
			counts[sched.Name] = 0
		}

		ok, err := o.content.ContentTypeExists(ctx, sched.ContentType)
		if err != nil {
			log.Error("content type lookup failed", slog.Any("err", err))
			continue
		}
		if !ok {
			log.Warn("content type does not exist; skipping schedule",
				slog.String("content_type", sched.ContentType))
			continue
		}

		ok, err = o.labels.AxisExists(ctx, sched.CategoryAxis)
		if err != nil {
			log.Error("axis lookup failed", slog.Any("err", err))
			continue
		}
		if !ok {
			log.Warn("category axis does not exist; skipping schedule",
				slog.String("axis", sched.CategoryAxis))
			continue
		}

		ok, err = o.labels.LabelExists(ctx, sched.PastLabel, sched.CategoryAxis)
		if err != nil {
			log.Error("label lookup failed", slog.Any("err", err))
			continue
		}
		if !ok {
			log.Warn("past label does not exist on axis; skipping schedule",
				slog.String("label", sched.PastLabel),
				slog.String("axis", sched.CategoryAxis))
			continue
		}

		items, err := o.content.FindItems(ctx, sched.ContentType, sched.CategoryAxis, sched.UpcomingLabel)
		if err != nil {
			log.Error("item query failed", slog.Any("err", err))
			continue
		}

		for _, itemID := range items {
			resolved, err := o.resolver.Resolve(ctx, itemID, sched, now)
			if err != nil {
				log.Error("date resolution failed", slog.Int64("item_id", itemID), slog.Any("err", err))
				continue
			}
			if !resolved.Found {
				continue
			}
			if !o.engine.ShouldTransition(resolved.Time, now, sched.TimeAware) {
				continue
			}

			if err := o.engine.Apply(ctx, itemID, sched.CategoryAxis, sched.PastLabel); err != nil {
				log.Error("label assignment failed", slog.Int64("item_id", itemID), slog.Any("err", err))
				continue
			}
			counts[sched.Name]++
		}

		if counts[sched.Name] > 0 {
			log.Info("schedule processed", slog.Int("transitioned", counts[sched.Name]))
		}
	}

	return counts, nil
}
