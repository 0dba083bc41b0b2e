// Package form implements the registration form controller: it owns the
// draft, validates it, and persists each accepted submission locally before
// handing it off for remote delivery.
package form

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/roster/internal/adapters/localstore"
	"github.com/okian/roster/internal/domain/catalog"
	"github.com/okian/roster/internal/domain/dedupe"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

const defaultConfirmationTTL = 5 * time.Second

// Field names accepted by UpdateField.
const (
	FieldID        = "id"
	FieldMatricule = "matricule"
	FieldName      = "name"
)

// Dispatcher hands a finalized record off for remote delivery. It must
// not block on the network.
type Dispatcher interface {
	Dispatch(ctx context.Context, rec model.Record) error
}

// NoticeKind distinguishes success confirmations from errors.
type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the message currently shown to the user.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// Controller is safe for concurrent use but models a single form session.
type Controller struct {
	mu     sync.Mutex
	draft  model.Draft
	notice Notice

	seen       dedupe.Deduper
	store      localstore.Store
	dispatcher Dispatcher
	catalog    *catalog.Catalog

	now             func() time.Time
	confirmationTTL time.Duration
	logger          logger.Logger
}

// New constructs a Controller. Call Open before Submit to load persisted
// state.
func New(opts ...Option) *Controller {
	c := &Controller{
		seen:            dedupe.NewInMemoryDeduper(),
		store:           localstore.NewMemoryStore(localstore.State{}),
		catalog:         catalog.Default(),
		now:             time.Now,
		confirmationTTL: defaultConfirmationTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("form")
	}
	return c
}

// Open loads the persisted state and primes the duplicate cache.
func (c *Controller) Open(ctx context.Context) error {
	st, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local state: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen.Load(ctx, st.SubmittedIDs)
	metrics.UpdateDuplicateCacheSize(int(c.seen.Size()))
	c.logger.Debug(ctx, "local state loaded",
		logger.Int("submissions", len(st.Submissions)),
		logger.Int("submitted_ids", len(st.SubmittedIDs)),
	)
	return nil
}

// UpdateField sets the id (alias "matricule") or the name.
func (c *Controller) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(name)) {
	case FieldID, FieldMatricule:
		c.draft.ID = value
	case FieldName:
		c.draft.Name = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	c.clearErrorLocked()
	return nil
}

// ToggleWorkArea selects area, or clears the selection if area is already
// selected.
func (c *Controller) ToggleWorkArea(area string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft.WorkArea == area {
		c.draft.WorkArea = ""
	} else {
		c.draft.WorkArea = area
	}
	c.clearErrorLocked()
}

// ToggleTechnology adds tech to the selection or removes it if present.
func (c *Controller) ToggleTechnology(tech string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.draft.Technologies {
		if t == tech {
			c.draft.Technologies = append(c.draft.Technologies[:i:i], c.draft.Technologies[i+1:]...)
			c.clearErrorLocked()
			return
		}
	}
	c.draft.Technologies = append(c.draft.Technologies, tech)
	c.clearErrorLocked()
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() model.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Submit validates the draft and, on success, persists the record locally,
// hands it to the dispatcher and resets the draft. It returns the finalized
// record on success.
//
// Remote delivery problems never fail Submit. A local persistence failure
// returns an error wrapping ErrPersist and leaves draft and cache unchanged.
func (c *Controller) Submit(ctx context.Context) (model.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notice = Notice{}

	if err := c.validateLocked(); err != nil {
		return model.Record{}, c.failLocked(ctx, "invalid", err)
	}

	id := dedupe.Normalize(c.draft.ID)
	if c.seen.SeenAndRecord(ctx, id) {
		return model.Record{}, c.failLocked(ctx, "duplicate", fmt.Errorf("%w: %s", ErrDuplicate, id))
	}

	rec := model.Record{
		ID:           id,
		Name:         c.draft.Name,
		WorkArea:     c.catalog.Label(c.draft.WorkArea),
		Technologies: append([]string(nil), c.draft.Technologies...),
		SubmittedAt:  model.FormatTimestamp(c.now()),
	}

	if err := c.store.Append(ctx, rec.Row()); err != nil {
		c.seen.Unrecord(ctx, id)
		metrics.RecordErrorByComponent("form", "persist")
		return model.Record{}, c.failLocked(ctx, "persist_error", fmt.Errorf("%w: %w", ErrPersist, err))
	}
	metrics.UpdateDuplicateCacheSize(int(c.seen.Size()))

	c.dispatchLocked(ctx, rec)

	c.draft = model.Draft{}
	c.notice = Notice{Kind: NoticeSuccess, Message: MsgSuccess, At: c.now()}
	metrics.RecordFormSubmission("success")
	c.logger.Info(ctx, "submission saved",
		logger.String("id", rec.ID),
		logger.String("work_area", rec.WorkArea),
		logger.Int("technologies", len(rec.Technologies)),
	)
	return rec, nil
}

// Notice returns the current notice. A success notice expires after the
// confirmation TTL; errors stay until the next edit or submit.
func (c *Controller) Notice() Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notice.Kind == NoticeSuccess && c.now().Sub(c.notice.At) >= c.confirmationTTL {
		c.notice = Notice{}
	}
	return c.notice
}

// Submitted returns the normalized ids submitted from this client, oldest
// first.
func (c *Controller) Submitted() []string {
	return c.seen.IDs()
}

// History returns the locally persisted rows.
func (c *Controller) History(ctx context.Context) ([]model.Row, error) {
	st, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local state: %w", err)
	}
	return st.Submissions, nil
}

// Catalog returns the catalog the controller validates against.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Controller) validateLocked() error {
	d := c.draft
	switch {
	case strings.TrimSpace(d.ID) == "":
		return ErrMissingID
	case strings.TrimSpace(d.Name) == "":
		return ErrMissingName
	case d.WorkArea == "":
		return ErrMissingWorkArea
	case len(d.Technologies) == 0:
		return ErrMissingTechnologies
	}
	if err := c.catalog.CheckWorkArea(d.WorkArea); err != nil {
		return err
	}
	return c.catalog.CheckTechnologies(d.Technologies)
}

func (c *Controller) dispatchLocked(ctx context.Context, rec model.Record) {
	if c.dispatcher == nil {
		c.logger.Debug(ctx, "remote delivery disabled", logger.String("id", rec.ID))
		return
	}
	if err := c.dispatcher.Dispatch(ctx, rec); err != nil {
		metrics.RecordErrorByComponent("form", "dispatch")
		c.logger.Warn(ctx, "remote hand-off failed, kept locally",
			logger.String("id", rec.ID),
			logger.Error(err),
		)
	}
}

func (c *Controller) failLocked(ctx context.Context, outcome string, err error) error {
	c.notice = Notice{Kind: NoticeError, Message: Message(err), At: c.now()}
	metrics.RecordFormSubmission(outcome)
	c.logger.Debug(ctx, "submission refused", logger.String("outcome", outcome), logger.Error(err))
	return err
}

func (c *Controller) clearErrorLocked() {
	if c.notice.Kind == NoticeError {
		c.notice = Notice{}
	}
}
