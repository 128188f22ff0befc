package controller

import (
	"context"
	"fmt"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// TogglePlaying starts or stops a loop or sound effect. Playlists are
// started through PlayPlaylist.
func (c *Controller) TogglePlaying(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError) {
	if !d.HasPlayingSet() {
		return models.State{}, models.ErrBadRequest(fmt.Sprintf("%s items cannot be toggled; play the playlist instead", d))
	}
	if appErr := validTitle(title); appErr != nil {
		return models.State{}, appErr
	}
	return c.apply(ctx, func() *models.AppError {
		c.playback.Toggle(d, title)
		return nil
	})
}

// StopAll stops every live item of d.
func (c *Controller) StopAll(ctx context.Context, d models.Domain) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		c.playback.StopAll(d)
		return nil
	})
}

// MarkPlayed records that title started outside of this controller, e.g. a
// preview in a client.
func (c *Controller) MarkPlayed(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError) {
	if appErr := validTitle(title); appErr != nil {
		return models.State{}, appErr
	}
	return c.apply(ctx, func() *models.AppError {
		c.playback.MarkStarted(d, title)
		return nil
	})
}

// RemoveRecent dismisses title from the recent list of d.
func (c *Controller) RemoveRecent(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		c.playback.RemoveRecent(d, title)
		return nil
	})
}

// Preferences returns the mixer settings.
func (c *Controller) Preferences(ctx context.Context) (models.Preferences, *models.AppError) {
	var prefs models.Preferences
	if appErr := c.read(ctx, func() { prefs = c.playback.Preferences() }); appErr != nil {
		return models.Preferences{}, appErr
	}
	return prefs, nil
}

// SetPreferences applies the non-nil fields of upd. Levels are clamped to
// [0, 1].
func (c *Controller) SetPreferences(ctx context.Context, upd models.PreferencesUpdate) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		if upd.Master != nil {
			c.playback.SetMasterVolume(*upd.Master)
		}
		if upd.Music != nil {
			c.playback.SetMusicVolume(*upd.Music)
		}
		if upd.Atmosphere != nil {
			c.playback.SetAtmosphereVolume(*upd.Atmosphere)
		}
		if upd.SFX != nil {
			c.playback.SetSFXVolume(*upd.SFX)
		}
		if upd.Ducking != nil {
			c.playback.SetDucking(*upd.Ducking)
		}
		return nil
	})
}

// PlayPlaylist asks the music player to start title. Recency is recorded
// when the player reports the playlist as started.
func (c *Controller) PlayPlaylist(ctx context.Context, title string) *models.AppError {
	if appErr := validTitle(title); appErr != nil {
		return appErr
	}
	if c.music == nil {
		return models.ErrUnavailable("no music player configured")
	}
	if err := c.music.Play(ctx, title); err != nil {
		c.logger.Warn("controller: play playlist failed", "title", title, "err", err)
		return models.ErrUnavailable(fmt.Sprintf("music player: %v", err))
	}
	return nil
}
