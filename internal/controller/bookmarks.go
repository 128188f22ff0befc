package controller

import (
	"context"
	"strings"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// Bookmarks returns the bookmark order of d.
func (c *Controller) Bookmarks(ctx context.Context, d models.Domain) ([]string, *models.AppError) {
	var items []string
	if appErr := c.read(ctx, func() { items = c.bookmarks.Items(d) }); appErr != nil {
		return nil, appErr
	}
	return items, nil
}

// ToggleBookmark bookmarks title in d, or removes the bookmark.
func (c *Controller) ToggleBookmark(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError) {
	if appErr := validTitle(title); appErr != nil {
		return models.State{}, appErr
	}
	return c.apply(ctx, func() *models.AppError {
		c.bookmarks.Toggle(d, title)
		return nil
	})
}

// RemoveBookmark removes title from d. Removing a title that is not
// bookmarked succeeds without a change.
func (c *Controller) RemoveBookmark(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		c.bookmarks.Remove(d, title)
		return nil
	})
}

// MoveBookmark moves the bookmark at from so it lands before the entry at
// to. Out-of-range indexes are ignored.
func (c *Controller) MoveBookmark(ctx context.Context, d models.Domain, from, to int) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		c.bookmarks.Move(d, from, to)
		return nil
	})
}

// MoveBookmarks moves several bookmarks, keeping their relative order.
func (c *Controller) MoveBookmarks(ctx context.Context, d models.Domain, offsets []int, to int) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		c.bookmarks.MoveOffsets(d, offsets, to)
		return nil
	})
}

// SetInitialBookmarks replaces every bookmark list. It is treated as a seed,
// not an edit, so nothing is exported.
func (c *Controller) SetInitialBookmarks(ctx context.Context, in models.InitialBookmarks) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		c.bookmarks.SetInitial(in.Playlists, in.Loops, in.SFX)
		return nil
	})
}

func validTitle(title string) *models.AppError {
	if strings.TrimSpace(title) == "" {
		return models.ErrBadRequest("title must not be empty")
	}
	return nil
}
