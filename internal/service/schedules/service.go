package schedules

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"termshift/internal/domain"
	"termshift/internal/store"
)

// BlobKey is the fixed key the serialized schedule collection is stored
// under. The name is stable across versions.
const BlobKey = "termshift:schedules"

// Service is the schedule store: a lazily loaded, memoized view of the
// persisted collection with index-addressed CRUD. The whole ordered
// collection is re-persisted on every mutation.
//
// A mutex serializes in-process access; the admin handlers and the tick
// goroutine share one Service. Concurrent writers against the same
// backing store from different processes can still race (no optimistic
// locking).
type Service struct {
	blobs   store.BlobStore
	trigger store.TriggerRegistrar
	tick    time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	loaded bool
	cache  []domain.Schedule
}

func NewService(blobs store.BlobStore, trigger store.TriggerRegistrar, tick time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		blobs:   blobs,
		trigger: trigger,
		tick:    tick,
		log:     log.With(slog.String("component", "schedules")),
	}
}

// List returns the ordered schedule collection, loading it from the
// backing store on first access. Persisted entries that fail validation
// are dropped, never surfaced as an error: one corrupted record must not
// take the whole collection down.
func (s *Service) List(ctx context.Context) ([]domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return append([]domain.Schedule(nil), s.cache...), nil
}

// ensureLoaded and persist expect s.mu to be held.
func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	raw, found, err := s.blobs.Load(ctx, BlobKey)
	if err != nil {
		return err
	}

	var schedules []domain.Schedule
	if found {
		var records []domain.Record
		if err := json.Unmarshal(raw, &records); err != nil {
			s.log.Warn("schedule blob is not valid json; starting empty", slog.Any("err", err))
		} else {
			schedules = make([]domain.Schedule, 0, len(records))
			for i, rec := range records {
				sched, err := domain.NewSchedule(rec)
				if err != nil {
					s.log.Warn("dropping invalid stored schedule",
						slog.Int("index", i),
						slog.String("name", rec.Name),
						slog.Any("err", err),
					)
					continue
				}
				schedules = append(schedules, sched)
			}
		}
	}

	s.cache = schedules
	s.loaded = true
	return nil
}

// Get returns the schedule at index, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, index int) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Schedule{}, err
	}
	if index < 0 || index >= len(s.cache) {
		return domain.Schedule{}, store.ErrNotFound
	}
	return s.cache[index], nil
}

// ForContentType returns schedules bound to the given content type,
// collection order preserved.
func (s *Service) ForContentType(ctx context.Context, contentType string) ([]domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	var out []domain.Schedule
	for _, sched := range s.cache {
		if sched.ContentType == contentType {
			out = append(out, sched)
		}
	}
	return out, nil
}

// Add validates and appends a schedule, returning its index. The first
// successful add arms the periodic trigger.
func (s *Service) Add(ctx context.Context, rec domain.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	sched, err := domain.NewSchedule(rec)
	if err != nil {
		return 0, err
	}

	next := append(append([]domain.Schedule(nil), s.cache...), sched)
	if err := s.persist(ctx, next); err != nil {
		return 0, err
	}

	if len(next) == 1 {
		s.armTrigger()
	}
	return len(next) - 1, nil
}

// Update replaces the schedule at index with a newly validated one.
func (s *Service) Update(ctx context.Context, index int, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if index < 0 || index >= len(s.cache) {
		return store.ErrNotFound
	}

	sched, err := domain.NewSchedule(rec)
	if err != nil {
		return err
	}

	next := append([]domain.Schedule(nil), s.cache...)
	next[index] = sched
	return s.persist(ctx, next)
}

// Delete removes the schedule at index; later entries shift down. When
// the collection empties, the periodic trigger is disarmed.
func (s *Service) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if index < 0 || index >= len(s.cache) {
		return store.ErrNotFound
	}

	next := append([]domain.Schedule(nil), s.cache[:index]...)
	next = append(next, s.cache[index+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return err
	}

	if len(next) == 0 {
		s.trigger.Disarm()
	}
	return nil
}

// Export returns the collection as plain records.
func (s *Service) Export(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Record, 0, len(s.cache))
	for _, sched := range s.cache {
		out = append(out, sched.Record())
	}
	return out, nil
}

// Import appends each valid record, skipping invalid ones, and returns
// how many were imported. A non-zero import re-arms the trigger.
func (s *Service) Import(ctx context.Context, records []domain.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	next := append([]domain.Schedule(nil), s.cache...)
	imported := 0
	for i, rec := range records {
		sched, err := domain.NewSchedule(rec)
		if err != nil {
			s.log.Warn("skipping invalid imported schedule",
				slog.Int("index", i),
				slog.String("name", rec.Name),
				slog.Any("err", err),
			)
			continue
		}
		next = append(next, sched)
		imported++
	}

	if imported == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return 0, err
	}

	s.armTrigger()
	return imported, nil
}

// ClearCache forces the next read to reload from the backing store.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Service) clearLocked() {
	s.loaded = false
	s.cache = nil
}

func (s *Service) persist(ctx context.Context, schedules []domain.Schedule) error {
	records := make([]domain.Record, 0, len(schedules))
	for _, sched := range schedules {
		records = append(records, sched.Record())
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := s.blobs.Save(ctx, BlobKey, raw); err != nil {
		// Leave the cache invalidated so the next read reflects
		// whatever actually landed in the backing store.
		s.clearLocked()
		return err
	}

	s.cache = schedules
	s.loaded = true
	return nil
}

func (s *Service) armTrigger() {
	if err := s.trigger.Arm(s.tick); err != nil {
		s.log.Warn("failed to arm periodic trigger", slog.Any("err", err))
	}
}
