// Package models defines the data structures shared by the ambiance stores,
// controller and HTTP API. JSON field names are the wire format for the API,
// SSE stream and export documents.
package models

import "time"

// BookmarkState is a snapshot of the bookmark order for every domain.
type BookmarkState struct {
	Playlists []string `json:"playlists"`
	Loops     []string `json:"loops"`
	SFX       []string `json:"sfx"`
}

// For returns the bookmark order for d.
func (b BookmarkState) For(d Domain) []string {
	switch d {
	case DomainPlaylist:
		return b.Playlists
	case DomainLoop:
		return b.Loops
	case DomainSFX:
		return b.SFX
	}
	return nil
}

// RecentState holds the MRU lists, most recent first.
type RecentState struct {
	Playlists []string `json:"playlists"`
	Loops     []string `json:"loops"`
	SFX       []string `json:"sfx"`
}

// LastPlayedState maps titles to the time they last started playing.
type LastPlayedState struct {
	Playlists map[string]time.Time `json:"playlists"`
	Loops     map[string]time.Time `json:"loops"`
	SFX       map[string]time.Time `json:"sfx"`
}

// PlaybackState is a snapshot of live playback, recency and preferences.
type PlaybackState struct {
	PlayingLoops []string        `json:"playing_loops"`
	PlayingSFX   []string        `json:"playing_sfx"`
	Recent       RecentState     `json:"recent"`
	LastPlayed   LastPlayedState `json:"last_played"`
	Preferences  Preferences     `json:"preferences"`
}

// State is the full snapshot published to API clients.
type State struct {
	Bookmarks BookmarkState `json:"bookmarks"`
	Playback  PlaybackState `json:"playback"`
}

// Preferences are the persisted mixer levels and the ducking toggle.
// Levels are in [0.0, 1.0].
type Preferences struct {
	Master     float64 `json:"master"`
	Music      float64 `json:"music"`
	Atmosphere float64 `json:"atmosphere"`
	SFX        float64 `json:"sfx"`
	Ducking    bool    `json:"ducking"`
}

// ExportVersion is the current export document format.
const ExportVersion = 1

// Export is the portable document written on every user edit and read back
// on import. Playlists and ducking are not part of it.
type Export struct {
	Version    int         `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Bookmarks  ExportMarks `json:"bookmarks"`
	Volumes    ExportLevel `json:"volumes"`
}

// ExportMarks holds the exported bookmark orders.
type ExportMarks struct {
	Loops []string `json:"loops"`
	SFX   []string `json:"sfx"`
}

// ExportLevel holds the exported mixer levels. A nil level was missing from
// an imported document and leaves the current setting unchanged.
type ExportLevel struct {
	Master     *float64 `json:"master,omitempty"`
	Music      *float64 `json:"music,omitempty"`
	Atmosphere *float64 `json:"atmosphere,omitempty"`
	SFX        *float64 `json:"sfx,omitempty"`
}

// Level returns a pointer to v, for building an ExportLevel.
func Level(v float64) *float64 { return &v }
