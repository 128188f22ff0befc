package models

import (
	"fmt"
	"strings"
)

// Domain is one of the three independent item domains.
type Domain string

const (
	DomainPlaylist Domain = "playlist"
	DomainLoop     Domain = "loop"
	DomainSFX      Domain = "sfx"
)

// Domains lists every domain in display order.
var Domains = []Domain{DomainPlaylist, DomainLoop, DomainSFX}

// ParseDomain accepts singular and plural spellings.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playlist", "playlists":
		return DomainPlaylist, nil
	case "loop", "loops", "ambience", "atmosphere", "atmospheres":
		return DomainLoop, nil
	case "sfx", "soundeffect", "soundeffects", "sound-effect", "sound-effects":
		return DomainSFX, nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// HasPlayingSet reports whether live playback is tracked as a set for d.
// Playlists are exclusive and owned by the music controller.
func (d Domain) HasPlayingSet() bool {
	return d == DomainLoop || d == DomainSFX
}

// Persisted keys. Each key is written by exactly one store.
const (
	KeyBookmarkedLoops     = "bookmarkedLoops"
	KeyBookmarkedSFX       = "bookmarkedSFX"
	KeyBookmarkedPlaylists = "bookmarkedPlaylists"

	KeyRecentLoops     = "recentLoopHistory"
	KeyRecentSFX       = "recentSFXHistory"
	KeyRecentPlaylists = "recentPlaylistHistory"

	KeyLastPlayedLoops     = "lastPlayedLoops"
	KeyLastPlayedSFX       = "lastPlayedSFX"
	KeyLastPlayedPlaylists = "lastPlayedPlaylists"

	KeyMasterVolume     = "masterVolume"
	KeyMusicVolume      = "musicVolume"
	KeyAtmosphereVolume = "atmosphereVolume"
	KeySFXVolume        = "sfxVolume"
	KeyDucking          = "sfxDuckingEnabled"
)

// BookmarkKey returns the persisted key of the bookmark order for d.
func (d Domain) BookmarkKey() string {
	switch d {
	case DomainLoop:
		return KeyBookmarkedLoops
	case DomainSFX:
		return KeyBookmarkedSFX
	default:
		return KeyBookmarkedPlaylists
	}
}

// RecentKey returns the persisted key of the recent list for d.
func (d Domain) RecentKey() string {
	switch d {
	case DomainLoop:
		return KeyRecentLoops
	case DomainSFX:
		return KeyRecentSFX
	default:
		return KeyRecentPlaylists
	}
}

// LastPlayedKey returns the persisted key of the last-played map for d.
func (d Domain) LastPlayedKey() string {
	switch d {
	case DomainLoop:
		return KeyLastPlayedLoops
	case DomainSFX:
		return KeyLastPlayedSFX
	default:
		return KeyLastPlayedPlaylists
	}
}
