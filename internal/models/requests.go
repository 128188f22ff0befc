package models

// TitleRequest is the body for operations addressed to a single item.
type TitleRequest struct {
	Title string `json:"title"`
}

// MoveRequest is the body for reordering bookmarks. When Offsets is set
// From is ignored.
type MoveRequest struct {
	From    *int  `json:"from,omitempty"`
	Offsets []int `json:"offsets,omitempty"`
	To      int   `json:"to"`
}

// InitialBookmarks is the PUT body replacing every bookmark list at once.
type InitialBookmarks struct {
	Playlists []string `json:"playlists"`
	Loops     []string `json:"loops"`
	SFX       []string `json:"sfx"`
}

// PreferencesUpdate is the PATCH body for mixer settings. Nil fields are
// left unchanged.
type PreferencesUpdate struct {
	Master     *float64 `json:"master,omitempty"`
	Music      *float64 `json:"music,omitempty"`
	Atmosphere *float64 `json:"atmosphere,omitempty"`
	SFX        *float64 `json:"sfx,omitempty"`
	Ducking    *bool    `json:"ducking,omitempty"`
}

// RenameRequest is the PATCH body for renaming a library item.
type RenameRequest struct {
	Title string `json:"title"`
}
