// Package pipeline ties memory, context building and suggestion together
// behind the two calls the CLI needs: Process and RecordOutcome.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/please/internal/memory"
	"github.com/felixgeelhaar/please/internal/observe"
	"github.com/felixgeelhaar/please/internal/provider"
	"github.com/felixgeelhaar/please/internal/recall"
	"github.com/felixgeelhaar/please/internal/suggest"
)

// ErrEmptyInput is returned for blank requests.
var ErrEmptyInput = errors.New("please provide a command")

// ShowLast is the reserved request that displays the remembered command.
const ShowLast = "show last"

const (
	SuggestionTitle    = "💡 Suggested Command"
	SuggestionSubtitle = "Confirm to execute or Ctrl+C to cancel"
	LastTitle          = "📜 Last Command"
	NoMemoryMessage    = "No previous command found."
)

// Suggester produces a raw model reply for a request.
type Suggester interface {
	Suggest(ctx context.Context, query, prior string) (string, error)
}

// Controller runs one request per process. It is not safe for concurrent use.
type Controller struct {
	store   memory.Store
	engine  Suggester
	builder *recall.Builder
	obs     *observe.Observer
	now     func() time.Time

	loaded bool
	last   *memory.Record
	held   *memory.Record
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(store memory.Store, engine Suggester, builder *recall.Builder, obs *observe.Observer, opts ...Option) *Controller {
	if obs == nil {
		obs = observe.Discard()
	}
	c := &Controller{
		store:   store,
		engine:  engine,
		builder: builder,
		obs:     obs,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process handles one natural-language request.
func (c *Controller) Process(ctx context.Context, input string) (_ *Display, err error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return nil, ErrEmptyInput
	}

	ctx, span := c.obs.StartSpan(ctx, "pipeline.process", attribute.Int("query.length", len(query)))
	defer func() { observe.EndSpan(span, err) }()

	last := c.lastRecord()

	if IsShowLast(query) {
		return lastDisplay(last), nil
	}

	prior := ""
	if c.builder != nil {
		prior = c.builder.Build(last, query)
	}
	c.obs.Log().Debug().Int("context.length", len(prior)).Msg("context built")

	raw, err := c.suggest(ctx, query, prior)
	if err != nil {
		c.held = nil
		return nil, err
	}

	command := suggest.Clean(raw)
	if command == "" {
		c.held = nil
		return nil, &suggest.Error{Kind: provider.KindProvider, Err: errors.New("reply contained no command")}
	}
	rec := memory.NewRecord(c.now(), query, command)
	c.held = rec
	c.last = rec
	c.save(rec)

	return &Display{
		Kind:     KindSuggestion,
		Title:    SuggestionTitle,
		Subtitle: SuggestionSubtitle,
		Body:     command,
		Command:  command,
		Raw:      raw,
	}, nil
}

func (c *Controller) suggest(ctx context.Context, query, prior string) (_ string, err error) {
	ctx, span := c.obs.StartSpan(ctx, "suggest")
	defer func() { observe.EndSpan(span, err) }()
	return c.engine.Suggest(ctx, query, prior)
}

// RecordOutcome stores the execution result against the command returned by
// the last successful Process call. Without one it does nothing.
func (c *Controller) RecordOutcome(success bool, output *string) {
	if c.held == nil {
		return
	}

	_, span := c.obs.StartSpan(context.Background(), "pipeline.record_outcome", attribute.Bool("success", success))
	defer span.End()

	c.held.Successful = success
	c.held.Result = nil
	if output != nil {
		res := *output
		c.held.Result = &res
	}
	c.save(c.held)
}

// Held returns a copy of the record awaiting an outcome, if any.
func (c *Controller) Held() *memory.Record {
	return c.held.Clone()
}

func (c *Controller) lastRecord() *memory.Record {
	if c.loaded {
		return c.last
	}
	c.loaded = true

	rec, err := c.store.Load()
	if err != nil {
		c.obs.Log().Warn().Err(err).Msg("could not load memory, continuing without context")
		return nil
	}
	c.last = rec
	return rec
}

func (c *Controller) save(rec *memory.Record) {
	if err := c.store.Save(rec); err != nil {
		c.obs.Log().Warn().Err(err).Msg("could not save memory")
	}
}

// IsShowLast reports whether query is the reserved "show last" request.
func IsShowLast(query string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(query), " "), ShowLast)
}
