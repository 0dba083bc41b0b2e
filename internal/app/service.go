// Package app composes the roster components: Service is the append store
// behind the HTTP API, Session is the client side behind the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/roster/internal/adapters/sheet"
	"github.com/okian/roster/internal/domain/catalog"
	"github.com/okian/roster/internal/domain/dedupe"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/types"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

// Messages returned to store clients.
const (
	SuccessMessage   = "Form submitted successfully"
	DuplicateMessage = "This matricule has already been submitted"
)

// Service is the append store: one row per normalized id, append only.
type Service struct {
	mu sync.RWMutex

	// appendMu serializes check-and-append and lazy initialization.
	appendMu    sync.Mutex
	initialized bool

	sheet     sheet.Sheet
	sheetName string
	deduper   dedupe.Deduper
	catalog   *catalog.Catalog
	now       func() time.Time

	started bool

	accepted   atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSheet sets the storage backend. Defaults to an in-memory sheet.
func WithSheet(sh sheet.Sheet) Option {
	return func(s *Service) {
		if sh != nil {
			s.sheet = sh
		}
	}
}

// WithSheetName sets the name reported for the sheet.
func WithSheetName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.sheetName = name
		}
	}
}

// WithCatalog sets the catalog used to label work areas.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithClock overrides time.Now for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sheet:     sheet.NewMemorySheet(),
		sheetName: "registrations",
		deduper:   dedupe.NewInMemoryDeduper(),
		catalog:   catalog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start marks the service ready. The sheet is initialized lazily by the
// first request that needs it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}
	s.started = true
	s.logger.Info(ctx, "append store started", logger.String("sheet", s.sheetName))
	return nil
}

// Stop closes the sheet.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.sheet.Close(); err != nil {
		s.logger.Error(context.Background(), "closing sheet failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "append store stopped")
}

// Append stores sub as a new row unless its normalized id is already
// present. Only the id is required; the work area is mapped to its label
// and a missing submittedAt is set to now. Catalog policy applies to the
// values that are present.
func (s *Service) Append(ctx context.Context, sub types.Submission) (model.Row, error) { //nolint:gocritic // hugeParam: request value
	if !s.isStarted() {
		return model.Row{}, ErrNotStarted
	}

	id := dedupe.Normalize(sub.ID)
	if id == "" {
		s.reject("missing_id")
		return model.Row{}, ErrMissingID
	}
	if err := s.checkCatalog(sub); err != nil {
		s.reject("catalog")
		return model.Row{}, err
	}

	start := time.Now()
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	if err := s.ensureInitLocked(ctx); err != nil {
		return model.Row{}, err
	}

	if s.deduper.Seen(ctx, id) {
		s.duplicate(ctx, id)
		return model.Row{}, ErrDuplicate
	}
	// The sheet may be shared with another process.
	stored, err := s.sheet.Contains(ctx, id)
	if err != nil {
		metrics.RecordErrorByComponent("store", "contains")
		return model.Row{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if stored {
		s.deduper.SeenAndRecord(ctx, id)
		s.duplicate(ctx, id)
		return model.Row{}, ErrDuplicate
	}

	submittedAt := strings.TrimSpace(sub.SubmittedAt)
	if submittedAt == "" {
		submittedAt = model.FormatTimestamp(s.now())
	}
	row := model.Row{
		ID:           id,
		Name:         sub.Name,
		WorkArea:     s.catalog.Label(sub.WorkArea),
		Technologies: model.JoinTechnologies(sub.Technologies),
		SubmittedAt:  submittedAt,
	}

	if err := s.sheet.Append(ctx, row); err != nil {
		if errors.Is(err, sheet.ErrDuplicate) {
			// Written by another process sharing the sheet.
			s.deduper.SeenAndRecord(ctx, id)
			s.duplicate(ctx, id)
			return model.Row{}, ErrDuplicate
		}
		metrics.RecordErrorByComponent("store", "append")
		s.logger.Error(ctx, "append failed", logger.String("id", id), logger.Error(err))
		return model.Row{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.deduper.SeenAndRecord(ctx, id)

	s.accepted.Add(1)
	metrics.RecordSubmissionAccepted()
	metrics.RecordSheetAppendLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateSheetRows(int(s.deduper.Size()))
	s.logger.Info(ctx, "row appended",
		logger.String("id", row.ID),
		logger.String("work_area", row.WorkArea),
	)
	return row, nil
}

// Rows returns the header and all rows, creating the sheet if needed.
func (s *Service) Rows(ctx context.Context) (types.RowsResponse, error) {
	if !s.isStarted() {
		return types.RowsResponse{}, ErrNotStarted
	}

	s.appendMu.Lock()
	err := s.ensureInitLocked(ctx)
	s.appendMu.Unlock()
	if err != nil {
		return types.RowsResponse{}, err
	}

	header, err := s.sheet.Header(ctx)
	if err != nil {
		return types.RowsResponse{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return types.RowsResponse{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return types.RowsResponse{
		Sheet:  s.sheetName,
		Header: header,
		Rows:   rows,
		Count:  len(rows),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	s.appendMu.Lock()
	initialized := s.initialized
	s.appendMu.Unlock()

	rows := int(s.deduper.Size())
	if initialized {
		if n, err := s.sheet.Count(context.Background()); err == nil {
			rows = n
		}
	}
	metrics.UpdateSheetRows(rows)

	return map[string]interface{}{
		"started":     started,
		"initialized": initialized,
		"sheet":       s.sheetName,
		"rows":        rows,
		"accepted":    s.accepted.Load(),
		"duplicates":  s.duplicates.Load(),
		"rejected":    s.rejected.Load(),
	}
}

// ensureInitLocked creates the sheet and loads its ids on first use. A
// failure leaves the service uninitialized so the next request retries.
// Caller holds appendMu.
func (s *Service) ensureInitLocked(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	created, err := s.sheet.Init(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("store", "init")
		s.logger.Error(ctx, "sheet init failed", logger.Error(err))
		return fmt.Errorf("%w: init: %w", ErrStoreUnavailable, err)
	}
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return fmt.Errorf("%w: load ids: %w", ErrStoreUnavailable, err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	s.deduper.Load(ctx, ids)
	s.initialized = true

	if created {
		metrics.RecordSheetInit()
	}
	metrics.UpdateSheetRows(int(s.deduper.Size()))
	s.logger.Info(ctx, "sheet ready",
		logger.String("sheet", s.sheetName),
		logger.Bool("created", created),
		logger.Int("rows", len(rows)),
	)
	return nil
}

func (s *Service) checkCatalog(sub types.Submission) error { //nolint:gocritic // hugeParam: request value
	if sub.WorkArea != "" {
		if err := s.catalog.CheckWorkArea(sub.WorkArea); err != nil {
			return fmt.Errorf("%w: %w", ErrRejected, err)
		}
	}
	if err := s.catalog.CheckTechnologies(sub.Technologies); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return nil
}

func (s *Service) duplicate(ctx context.Context, id string) {
	s.duplicates.Add(1)
	metrics.RecordSubmissionDuplicate()
	s.logger.Debug(ctx, "duplicate submission", logger.String("id", id))
}

func (s *Service) reject(reason string) {
	s.rejected.Add(1)
	metrics.RecordSubmissionRejected(reason)
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
