// Package engine defines the audio collaborators driven by the controller.
// The controller never mixes audio itself: it tells the engine which loops
// and sound effects should be live and asks the music player to change
// playlists. Collaborators report back through an events.Sink.
package engine

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Engine plays ambience loops and one-shot sound effects.
// Reconcile calls are idempotent: the engine starts what is missing from
// titles and stops what is no longer listed.
type Engine interface {
	// ReconcileAtmospheres makes exactly titles the live ambience loops.
	ReconcileAtmospheres(ctx context.Context, titles []string) error

	// ReconcileSFX makes exactly titles the live sound effects. The engine
	// delivers events.SoundEffectFinished when a one-shot effect ends.
	ReconcileSFX(ctx context.Context, titles []string) error
}

// Music controls the exclusive playlist player. Actions are one-shot and
// asynchronous; the player delivers events.PlaylistStarted once playback
// actually begins.
type Music interface {
	Play(ctx context.Context, playlist string) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}

// Error is returned when the engine rejects a command.
type Error struct {
	msg string
}

func (e Error) Error() string { return e.msg }

// ErrEngine creates a new engine error.
func ErrEngine(msg string) error { return Error{msg: msg} }

// Throttled limits how often reconcile commands reach the wrapped engine.
// Callers block until the limiter allows the call or ctx is done.
type Throttled struct {
	next    Engine
	limiter *rate.Limiter
}

// Throttle wraps e so that at most perSecond reconciles (with bursts of
// burst) are forwarded.
func Throttle(e Engine, perSecond float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: e, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *Throttled) ReconcileAtmospheres(ctx context.Context, titles []string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.ReconcileAtmospheres(ctx, titles)
}

func (t *Throttled) ReconcileSFX(ctx context.Context, titles []string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.ReconcileSFX(ctx, titles)
}

// DefaultSFXDuration is how long the mock engine lets a sound effect play.
const DefaultSFXDuration = 4 * time.Second
