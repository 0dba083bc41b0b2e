package form

import (
	"time"

	"github.com/okian/roster/internal/adapters/localstore"
	"github.com/okian/roster/internal/domain/catalog"
	"github.com/okian/roster/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLocalStore sets where history and submitted ids are persisted.
func WithLocalStore(s localstore.Store) Option {
	return func(c *Controller) {
		if s != nil {
			c.store = s
		}
	}
}

// WithDispatcher sets the hand-off to remote delivery. Without one,
// records are only kept locally.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		c.dispatcher = d
	}
}

// WithCatalog sets the work-area and technology catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *Controller) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfirmationTTL sets how long a success notice stays visible.
func WithConfirmationTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.confirmationTTL = ttl
		}
	}
}
