package handlers

import (
	"context"
	"sync"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"estimateboard/estimate"
	"estimateboard/loader"
)

// Sessions keeps one in-memory editing session per estimate. Documents are
// loaded lazily from the estimates collection; edits are never written back.
type Sessions struct {
	app       core.App
	logger    *zap.Logger
	undoDepth int

	mu      sync.Mutex
	entries map[string]*session
}

type session struct {
	mu    sync.Mutex
	store *estimate.Store
}

// NewSessions returns an empty registry. A nil logger is replaced by a no-op one.
func NewSessions(app core.App, undoDepth int, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		app:       app,
		logger:    logger,
		undoDepth: undoDepth,
		entries:   make(map[string]*session),
	}
}

// Logger returns the registry's logger.
func (s *Sessions) Logger() *zap.Logger { return s.logger }

// acquire returns the locked session of an estimate, creating it if needed.
// A session dropped while the caller waited for its lock is not used.
func (s *Sessions) acquire(estimateID string) *session {
	for {
		s.mu.Lock()
		sess, ok := s.entries[estimateID]
		if !ok {
			sess = &session{store: estimate.NewStore(s.undoDepth)}
			s.entries[estimateID] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		s.mu.Lock()
		current := s.entries[estimateID] == sess
		s.mu.Unlock()
		if current {
			return sess
		}
		sess.mu.Unlock()
	}
}

// drop forgets a session whose document could not be loaded.
func (s *Sessions) drop(estimateID string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[estimateID] == sess {
		delete(s.entries, estimateID)
	}
}

// Len reports how many estimates have a live session.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// With runs fn against the store of an estimate, loading it first if needed.
// Calls for the same estimate are serialized. A failed load leaves no session
// behind, so the next call retries.
func (s *Sessions) With(ctx context.Context, estimateID string, fn func(*estimate.Store) error) error {
	sess := s.acquire(estimateID)
	defer sess.mu.Unlock()

	if !sess.store.Loaded() {
		if err := s.load(ctx, estimateID, sess.store); err != nil {
			s.drop(estimateID, sess)
			return err
		}
	}
	return fn(sess.store)
}

// Reload discards all edits and undo history of an estimate and reads its
// document again.
func (s *Sessions) Reload(ctx context.Context, estimateID string, fn func(*estimate.Store) error) error {
	sess := s.acquire(estimateID)
	defer sess.mu.Unlock()

	if err := s.load(ctx, estimateID, sess.store); err != nil {
		s.drop(estimateID, sess)
		return err
	}
	return fn(sess.store)
}

func (s *Sessions) load(ctx context.Context, estimateID string, store *estimate.Store) error {
	doc, totals, err := loader.Load(ctx, loader.RecordSource{App: s.app, EstimateID: estimateID})
	if err != nil {
		store.Reset()
		s.logger.Warn("estimate load failed",
			zap.String("estimate_id", estimateID),
			zap.Error(err))
		return err
	}
	store.Set(doc)
	s.logger.Info("estimate loaded",
		zap.String("estimate_id", estimateID),
		zap.Int("sections", len(doc.Sections)),
		zap.Float64("grand_total", totals.GrandTotal))
	return nil
}
