// Package export writes the portable preferences document after user edits
// and imports documents dropped into a watched directory.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/micro-nova/ambiance-go/internal/models"
)

// Decode reads an export document. A missing version is treated as the
// current one; newer versions are rejected.
func Decode(r io.Reader) (models.Export, error) {
	var doc models.Export
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return models.Export{}, fmt.Errorf("export: decode: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = models.ExportVersion
	}
	if doc.Version > models.ExportVersion {
		return models.Export{}, fmt.Errorf("export: unsupported version %d", doc.Version)
	}
	if doc.Bookmarks.Loops == nil {
		doc.Bookmarks.Loops = []string{}
	}
	if doc.Bookmarks.SFX == nil {
		doc.Bookmarks.SFX = []string{}
	}
	return doc, nil
}

// Read decodes the document at path.
func Read(path string) (models.Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Export{}, fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Write stores doc at path atomically (temp file + rename).
func Write(path string, doc models.Export) error {
	if doc.Version == 0 {
		doc.Version = models.ExportVersion
	}
	if doc.ExportedAt.IsZero() {
		doc.ExportedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
