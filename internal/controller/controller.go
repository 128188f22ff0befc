// Package controller is the single execution context that owns the bookmark
// and playback stores. Every read and mutation of store state runs on the
// goroutine started by Run; other goroutines submit work and wait for it.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/micro-nova/ambiance-go/internal/bookmarks"
	"github.com/micro-nova/ambiance-go/internal/engine"
	"github.com/micro-nova/ambiance-go/internal/events"
	"github.com/micro-nova/ambiance-go/internal/export"
	"github.com/micro-nova/ambiance-go/internal/library"
	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/playback"
)

const inboundBufferSize = 64

// ErrStopped is returned for work submitted after Run returned.
var ErrStopped = errors.New("controller: stopped")

// Deps are the collaborators of a Controller. Bookmarks and Playback are
// required and must already be loaded; the rest default to inert values.
type Deps struct {
	Bookmarks *bookmarks.Store
	Playback  *playback.Store
	Engine    engine.Engine
	Music     engine.Music
	Catalog   *library.Catalog
	Bus       *events.Bus
	Exporter  *export.Exporter
	Logger    *slog.Logger
}

// Controller serializes access to the stores, keeps the audio engine in step
// with the playing sets and publishes every new snapshot on the bus.
type Controller struct {
	bookmarks *bookmarks.Store
	playback  *playback.Store
	engine    engine.Engine
	music     engine.Music
	catalog   *library.Catalog
	bus       *events.Bus
	exporter  *export.Exporter
	logger    *slog.Logger

	ops     chan func(context.Context)
	inbound chan events.Event
	stopped chan struct{}
}

// New wires the collaborators and the stores' dirty hooks. Call Run to start
// processing.
func New(d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Catalog == nil {
		d.Catalog = library.New(d.Logger)
	}
	if d.Bus == nil {
		d.Bus = events.NewBus()
	}
	if d.Exporter == nil {
		d.Exporter = export.NewExporter("", 0, d.Logger)
	}
	c := &Controller{
		bookmarks: d.Bookmarks,
		playback:  d.Playback,
		engine:    d.Engine,
		music:     d.Music,
		catalog:   d.Catalog,
		bus:       d.Bus,
		exporter:  d.Exporter,
		logger:    d.Logger,
		ops:       make(chan func(context.Context)),
		inbound:   make(chan events.Event, inboundBufferSize),
		stopped:   make(chan struct{}),
	}
	c.bookmarks.OnDirty(c.markDirty)
	c.playback.OnDirty(c.markDirty)
	return c
}

// Bus returns the bus snapshots are published on.
func (c *Controller) Bus() *events.Bus { return c.bus }

// Catalog returns the item catalog.
func (c *Controller) Catalog() *library.Catalog { return c.catalog }

// Run processes submitted work and inbound events until ctx is done.
// The engine is reconciled with the (empty) playing sets on start.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)
	c.reconcile(ctx, playingSets{}, c.playing(), true)

	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-c.ops:
			op(ctx)
		case ev := <-c.inbound:
			c.handle(ctx, ev)
		}
	}
}

// Deliver enqueues an inbound event from any goroutine. It never blocks.
func (c *Controller) Deliver(ev events.Event) {
	select {
	case c.inbound <- ev:
	default:
		go func() {
			select {
			case c.inbound <- ev:
			case <-c.stopped:
			}
		}()
	}
}

var _ events.Sink = (*Controller)(nil)

// do runs fn on the controller goroutine and waits for it.
func (c *Controller) do(ctx context.Context, fn func(context.Context) *models.AppError) *models.AppError {
	result := make(chan *models.AppError, 1)
	op := func(loopCtx context.Context) { result <- fn(loopCtx) }
	select {
	case c.ops <- op:
	case <-ctx.Done():
		return models.ErrUnavailable(ctx.Err().Error())
	case <-c.stopped:
		return models.ErrUnavailable(ErrStopped.Error())
	}
	select {
	case appErr := <-result:
		return appErr
	case <-ctx.Done():
		return models.ErrUnavailable(ctx.Err().Error())
	}
}

// apply is the mutation primitive: it runs fn on the controller goroutine,
// reconciles the engine when a playing set changed and publishes the new
// snapshot. fn returning an error aborts before reconcile and publish.
func (c *Controller) apply(ctx context.Context, fn func() *models.AppError) (models.State, *models.AppError) {
	var state models.State
	appErr := c.do(ctx, func(loopCtx context.Context) *models.AppError {
		before := c.playing()
		if appErr := fn(); appErr != nil {
			return appErr
		}
		c.reconcile(loopCtx, before, c.playing(), false)
		state = c.snapshot()
		c.bus.Publish(state)
		return nil
	})
	if appErr != nil {
		return models.State{}, appErr
	}
	return state, nil
}

// read runs fn on the controller goroutine without publishing.
func (c *Controller) read(ctx context.Context, fn func()) *models.AppError {
	return c.do(ctx, func(context.Context) *models.AppError {
		fn()
		return nil
	})
}

// State returns a snapshot of bookmarks and playback.
func (c *Controller) State(ctx context.Context) (models.State, *models.AppError) {
	var state models.State
	if appErr := c.read(ctx, func() { state = c.snapshot() }); appErr != nil {
		return models.State{}, appErr
	}
	return state, nil
}

func (c *Controller) snapshot() models.State {
	return models.State{
		Bookmarks: c.bookmarks.Snapshot(),
		Playback:  c.playback.Snapshot(),
	}
}

// handle applies an inbound event. These are the only mutations that do
// not originate from a caller. A Finished event may be stale when the effect
// was toggled again before it was handled, so the engine is reconciled with
// the resulting sets.
func (c *Controller) handle(ctx context.Context, ev events.Event) {
	before := c.playing()
	changed := false
	switch ev.Kind {
	case events.SoundEffectFinished:
		changed = c.playback.Finished(models.DomainSFX, ev.Title)
	case events.PlaylistStarted:
		c.playback.MarkStarted(models.DomainPlaylist, ev.Title)
		changed = true
	default:
		c.logger.Warn("controller: unknown inbound event", "kind", ev.Kind, "title", ev.Title)
		return
	}
	c.logger.Debug("controller: inbound event", "kind", ev.Kind, "title", ev.Title, "changed", changed)
	if changed {
		c.reconcile(ctx, before, c.playing(), false)
		c.bus.Publish(c.snapshot())
	}
}

type playingSets struct {
	loops []string
	sfx   []string
}

func (c *Controller) playing() playingSets {
	return playingSets{
		loops: c.playback.Playing(models.DomainLoop),
		sfx:   c.playback.Playing(models.DomainSFX),
	}
}

// reconcile pushes changed playing sets to the engine. Engine failures are
// logged; store state stays authoritative.
func (c *Controller) reconcile(ctx context.Context, before, after playingSets, force bool) {
	if c.engine == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if force || !slices.Equal(before.loops, after.loops) {
		if err := c.engine.ReconcileAtmospheres(ctx, after.loops); err != nil {
			c.logger.Warn("controller: reconcile atmospheres failed", "titles", after.loops, "err", err)
		}
	}
	if force || !slices.Equal(before.sfx, after.sfx) {
		if err := c.engine.ReconcileSFX(ctx, after.sfx); err != nil {
			c.logger.Warn("controller: reconcile sfx failed", "titles", after.sfx, "err", err)
		}
	}
}
