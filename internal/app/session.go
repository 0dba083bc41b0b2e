package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/roster/internal/adapters/localstore"
	"github.com/okian/roster/internal/adapters/mq/queue"
	"github.com/okian/roster/internal/adapters/mq/worker"
	"github.com/okian/roster/internal/adapters/remote"
	"github.com/okian/roster/internal/config"
	"github.com/okian/roster/internal/domain/catalog"
	"github.com/okian/roster/internal/domain/delivery"
	"github.com/okian/roster/internal/domain/form"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
	"github.com/okian/roster/pkg/metrics"
)

// Session is one client: a form controller over local state plus, when a
// remote URL is configured, an outbox delivering to the append store.
type Session struct {
	controller *form.Controller
	store      localstore.Store
	ledger     *delivery.Ledger

	queue  *queue.InMemoryQueue
	pool   *worker.Pool
	sender worker.Sender

	remoteURL    string
	drainTimeout time.Duration
	logger       logger.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	store  localstore.Store
	sender worker.Sender
	clock  func() time.Time
	logger logger.Logger
}

// WithSessionStore replaces the file store named by the config.
func WithSessionStore(s localstore.Store) SessionOption {
	return func(o *sessionOptions) { o.store = s }
}

// WithSessionSender replaces the HTTP client used for delivery. Delivery
// is enabled even without a remote URL.
func WithSessionSender(s worker.Sender) SessionOption {
	return func(o *sessionOptions) { o.sender = s }
}

// WithSessionClock overrides time.Now for the controller.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(o *sessionOptions) { o.clock = now }
}

// WithSessionLogger sets a custom logger for the session.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(o *sessionOptions) { o.logger = l }
}

// NewSession builds a client session from cfg. Remote delivery is
// disabled when cfg.RemoteURL is empty.
func NewSession(cfg *config.Config, opts ...SessionOption) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("session")
	}
	if o.store == nil {
		o.store = localstore.NewFileStore(cfg.StatePath)
	}

	s := &Session{
		store:        o.store,
		ledger:       delivery.NewLedger(),
		remoteURL:    cfg.RemoteURL,
		drainTimeout: time.Duration(cfg.DrainTimeoutMS) * time.Millisecond,
		logger:       o.logger,
		sender:       o.sender,
	}
	if s.sender == nil && cfg.RemoteURL != "" {
		s.sender = remote.New(cfg.RemoteURL,
			remote.WithTimeout(time.Duration(cfg.RemoteTimeoutMS)*time.Millisecond))
	}

	formOpts := []form.Option{
		form.WithLocalStore(s.store),
		form.WithCatalog(catalog.FromConfig(cfg)),
		form.WithConfirmationTTL(time.Duration(cfg.ConfirmationTTLMS) * time.Millisecond),
		form.WithClock(o.clock),
		form.WithLogger(o.logger.Named("form")),
	}
	if s.sender != nil {
		s.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.OutboxSize))
		s.pool = worker.NewPool(cfg.WorkerCount, s.queue, s.sender, s.ledger,
			worker.WithLogger(o.logger.Named("outbox")))
		formOpts = append(formOpts, form.WithDispatcher(s))
	}
	s.controller = form.New(formOpts...)
	return s
}

// Open loads local state and starts delivery workers.
func (s *Session) Open(ctx context.Context) error {
	if err := s.controller.Open(ctx); err != nil {
		return err
	}
	if s.pool != nil {
		s.pool.Start(ctx)
		s.logger.Debug(ctx, "outbox started",
			logger.String("remote_url", s.remoteURL),
			logger.Int("workers", s.pool.Size()),
		)
	}
	return nil
}

// Controller returns the form controller.
func (s *Session) Controller() *form.Controller { return s.controller }

// Ledger returns the delivery outcomes recorded so far.
func (s *Session) Ledger() *delivery.Ledger { return s.ledger }

// RemoteEnabled reports whether records are delivered to a store.
func (s *Session) RemoteEnabled() bool { return s.pool != nil }

// Dispatch enqueues rec for delivery without waiting on the network.
func (s *Session) Dispatch(ctx context.Context, rec model.Record) error {
	if s.queue == nil {
		return nil
	}
	job := queue.NewJob(rec)
	s.ledger.Record(delivery.Outcome{ID: rec.ID, JobID: job.ID, Status: delivery.StatusPending, At: job.EnqueuedAt})
	if !s.queue.Enqueue(ctx, job) {
		err := queue.EnqueueError(s.queue)
		s.ledger.Record(delivery.Outcome{ID: rec.ID, JobID: job.ID, Status: delivery.StatusFailed, Error: err.Error()})
		metrics.RecordDispatchOutcome(string(delivery.StatusFailed))
		return fmt.Errorf("dispatch %s: %w", rec.ID, err)
	}
	return nil
}

// Close drains the outbox, waiting at most the configured drain timeout.
// Jobs still pending afterwards stay failed or pending in the ledger; the
// records themselves are already persisted locally.
func (s *Session) Close(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if s.drainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.drainTimeout)
		defer cancel()
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "outbox not fully drained", logger.Error(err))
		return err
	}
	return nil
}
