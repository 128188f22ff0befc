package controller

import (
	"context"
	"time"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// Export returns the current export document.
func (c *Controller) Export(ctx context.Context) (models.Export, *models.AppError) {
	var doc models.Export
	if appErr := c.read(ctx, func() { doc = c.exportDoc() }); appErr != nil {
		return models.Export{}, appErr
	}
	return doc, nil
}

// Import replaces the loop and sound-effect bookmarks and the mixer levels
// present in doc. Playlists, ducking and absent levels are untouched.
// Importing never triggers an export.
func (c *Controller) Import(ctx context.Context, doc models.Export) (models.State, *models.AppError) {
	if doc.Version > models.ExportVersion {
		return models.State{}, models.ErrBadRequest("unsupported export version")
	}
	return c.apply(ctx, func() *models.AppError {
		c.bookmarks.ApplyExport(doc.Bookmarks.Loops, doc.Bookmarks.SFX)
		c.playback.ApplyExportPreferences(doc.Volumes)
		c.logger.Info("controller: export document imported",
			"loops", len(doc.Bookmarks.Loops), "sfx", len(doc.Bookmarks.SFX))
		return nil
	})
}

// Flush writes any pending export document.
func (c *Controller) Flush() error { return c.exporter.Flush() }

// markDirty is the stores' dirty hook. It runs on the controller goroutine.
func (c *Controller) markDirty() {
	c.exporter.Submit(c.exportDoc())
}

func (c *Controller) exportDoc() models.Export {
	prefs := c.playback.Preferences()
	return models.Export{
		Version:    models.ExportVersion,
		ExportedAt: time.Now().UTC(),
		Bookmarks: models.ExportMarks{
			Loops: c.bookmarks.Items(models.DomainLoop),
			SFX:   c.bookmarks.Items(models.DomainSFX),
		},
		Volumes: models.ExportLevel{
			Master:     models.Level(prefs.Master),
			Music:      models.Level(prefs.Music),
			Atmosphere: models.Level(prefs.Atmosphere),
			SFX:        models.Level(prefs.SFX),
		},
	}
}
