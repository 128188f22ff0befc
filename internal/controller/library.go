package controller

import (
	"context"
	"errors"

	"github.com/micro-nova/ambiance-go/internal/library"
	"github.com/micro-nova/ambiance-go/internal/models"
)

// LookupItem returns catalog metadata for title. Missing entries yield an
// UNAVAILABLE error.
func (c *Controller) LookupItem(d models.Domain, title string) (library.Item, *models.AppError) {
	it, err := c.catalog.Lookup(d, title)
	if err != nil {
		return library.Item{}, asAppError(err)
	}
	return it, nil
}

// SearchLibrary ranks catalog items against query. An empty domain searches
// every domain.
func (c *Controller) SearchLibrary(query string, d models.Domain) []library.Result {
	return c.catalog.Search(query, d)
}

// RenameItem retitles an item and carries its bookmark, playing state,
// recency and last-played time over to the new title. Items unknown to the
// catalog are still renamed in the stores.
func (c *Controller) RenameItem(ctx context.Context, d models.Domain, oldTitle, newTitle string) (models.State, *models.AppError) {
	if appErr := validTitle(newTitle); appErr != nil {
		return models.State{}, appErr
	}
	return c.apply(ctx, func() *models.AppError {
		if c.catalog.Contains(d, oldTitle) {
			if err := c.catalog.Rename(d, oldTitle, newTitle); err != nil {
				return asAppError(err)
			}
		}
		c.bookmarks.Rename(d, oldTitle, newTitle)
		c.playback.Rename(d, oldTitle, newTitle)
		c.logger.Info("controller: item renamed", "domain", d, "from", oldTitle, "to", newTitle)
		return nil
	})
}

// DeleteItem removes an item from the catalog and every trace of it from the
// stores. Playing items are stopped.
func (c *Controller) DeleteItem(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError) {
	return c.apply(ctx, func() *models.AppError {
		if c.catalog.Contains(d, title) {
			if err := c.catalog.Delete(d, title); err != nil {
				return asAppError(err)
			}
		}
		c.bookmarks.Remove(d, title)
		c.playback.RemoveState(d, title)
		c.logger.Info("controller: item deleted", "domain", d, "title", title)
		return nil
	})
}

func asAppError(err error) *models.AppError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.ErrInternal(err.Error())
}

// LibraryTitles returns the sorted catalog titles of d.
func (c *Controller) LibraryTitles(d models.Domain) []string {
	return c.catalog.Titles(d)
}
