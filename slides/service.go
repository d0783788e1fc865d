// Package slides exposes presentation editing as tool operations over
// explicit document handles, and registers them on an MCP server.
package slides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/slidekit/deck"
	"github.com/hazyhaar/slidekit/idgen"
	"github.com/hazyhaar/slidekit/journal"
	"github.com/hazyhaar/slidekit/safepath"
	"github.com/hazyhaar/slidekit/ungroup"
)

// Service owns the open presentations and implements every tool.
type Service struct {
	docs    *Registry
	files   *safepath.Sandbox
	engine  *ungroup.Engine
	journal *journal.Journal
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSandbox confines every caller-supplied path to sb.
func WithSandbox(sb *safepath.Sandbox) Option {
	return func(s *Service) { s.files = sb }
}

// WithJournal records every tool call and enables get_operation_log.
func WithJournal(j *journal.Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithIDGenerator sets the generator for presentation handles.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Service) { s.docs = NewRegistry(gen) }
}

// New returns a Service with no open presentations.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.docs == nil {
		s.docs = NewRegistry(nil)
	}
	if s.files == nil {
		s.files = &safepath.Sandbox{}
	}
	s.engine = ungroup.New(s.logger)
	return s
}

// NewFromConfig builds a Service from cfg: sandbox root, file size limit
// and, when configured, the journal. The caller closes the journal.
func NewFromConfig(cfg *Config, logger *slog.Logger) (*Service, error) {
	sb, err := safepath.New(cfg.RootDir, cfg.MaxFile)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithLogger(logger), WithSandbox(sb)}
	if cfg.Journal.Enabled() {
		j, err := journal.Open(cfg.Journal.DBPath, cfg.Journal.BufferSize, journal.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		opts = append(opts, WithJournal(j))
	}
	return New(opts...), nil
}

// Journal returns the configured journal, or nil.
func (s *Service) Journal() *journal.Journal { return s.journal }

// Registry returns the open-document registry.
func (s *Service) Registry() *Registry { return s.docs }

// withDoc runs fn with the document locked.
func withDoc[T any](ctx context.Context, s *Service, id string, fn func(*Document) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	d, err := s.docs.Get(id)
	if err != nil {
		return zero, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d)
}

// withSlide runs fn with the document locked and the slide resolved.
func withSlide[T any](ctx context.Context, s *Service, ref slideRef, fn func(*Document, *deck.Slide) (T, error)) (T, error) {
	return withDoc(ctx, s, ref.PresentationID, func(d *Document) (T, error) {
		sl, err := d.pres.Slide(ref.SlideIndex)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(d, sl)
	})
}

// failed prefixes err with the operation that failed. Index errors are
// returned unchanged so callers always see "Invalid ... index: N".
func failed(op string, err error) error {
	if err == nil || errors.Is(err, deck.ErrIndex) {
		return err
	}
	return fmt.Errorf("Error %s: %w", op, err)
}

func inches(v *float64, def float64) int64 {
	if v == nil {
		return deck.Inches(def)
	}
	return deck.Inches(*v)
}

func optInches(v *float64) *int64 {
	if v == nil {
		return nil
	}
	n := deck.Inches(*v)
	return &n
}
