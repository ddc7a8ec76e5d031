// Package desk is the owned application object behind every screen.
//
// A Desk is opened once, holds the backing store, the session store and
// the record store, and is closed when the caller is done. Screen
// operations run in the order a form would: route gate, action role check,
// input validation, then the store call. A rejection at any of the first
// three steps leaves the stores untouched.
package desk

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/clock"
	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/metrics"
	"github.com/roach88/clinicdesk/internal/records"
	"github.com/roach88/clinicdesk/internal/session"
)

// Options configures Open. Only Backend is required.
type Options struct {
	Backend kv.Backend
	IDs     records.IDSource
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Desk is one open clinic workspace.
type Desk struct {
	backend kv.Backend
	session *session.Store
	records *records.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Open loads the session and all collections from opts.Backend.
// The desk owns the backend from here on and closes it in Close.
func Open(ctx context.Context, opts Options) (*Desk, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("desk: backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ids := opts.IDs
	if ids == nil {
		ids = clock.NewWall()
	}

	schema, err := domain.NewSchema()
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(ctx, opts.Backend, session.Options{
		Logger:  logger,
		Metrics: opts.Metrics,
		Schema:  schema,
	})
	if err != nil {
		return nil, err
	}

	recs, err := records.Open(ctx, opts.Backend, records.Options{
		IDs:     ids,
		Schema:  schema,
		Logger:  logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Desk{
		backend: opts.Backend,
		session: sess,
		records: recs,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Close releases the backend.
func (d *Desk) Close() error {
	return d.backend.Close()
}

// Session exposes the session store.
func (d *Desk) Session() *session.Store { return d.session }

// Records exposes the record store.
func (d *Desk) Records() *records.Store { return d.records }

// Identity returns the current identity, or nil.
func (d *Desk) Identity() *domain.Identity { return d.session.Current() }

// Departments returns the fixed department list.
func (d *Desk) Departments() []string { return d.records.Departments() }

// Navigate resolves a route against the current identity.
func (d *Desk) Navigate(route access.Route) (access.Route, error) {
	return access.Navigate(d.session.Current(), route)
}

// enter applies route gating for a screen.
func (d *Desk) enter(route access.Route) (*domain.Identity, error) {
	id := d.session.Current()
	to, err := access.Navigate(id, route)
	if err != nil {
		return nil, err
	}
	if to != route {
		d.logger.Warn("route redirected", "route", route, "to", to)
		return nil, &RedirectError{From: route, To: to}
	}
	return id, nil
}

// authorize applies route gating, then the action's role check.
func (d *Desk) authorize(route access.Route, action access.Action) (*domain.Identity, error) {
	id, err := d.enter(route)
	if err != nil {
		return nil, err
	}
	if err := access.Check(id, action); err != nil {
		d.metrics.Denied(string(action))
		attrs := []any{"action", action}
		if id != nil {
			attrs = append(attrs, "username", id.Username, "role", id.Role)
		}
		d.logger.Warn("action denied", attrs...)
		return nil, err
	}
	return id, nil
}
