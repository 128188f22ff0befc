package models_test

import (
	"math"
	"testing"

	"github.com/micro-nova/ambiance-go/internal/models"
)

func TestDefaultPreferences(t *testing.T) {
	p := models.DefaultPreferences()

	if p.Master != 0.9 {
		t.Errorf("Master = %v, want 0.9", p.Master)
	}
	if p.Music != 0.72 {
		t.Errorf("Music = %v, want 0.72", p.Music)
	}
	if p.Atmosphere != 0.56 {
		t.Errorf("Atmosphere = %v, want 0.56", p.Atmosphere)
	}
	if p.SFX != 0.48 {
		t.Errorf("SFX = %v, want 0.48", p.SFX)
	}
	if !p.Ducking {
		t.Error("Ducking = false, want true")
	}
}

func TestClampLevel(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.33, 0.33},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := models.ClampLevel(tt.in); got != tt.want {
			t.Errorf("ClampLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Domain
		wantErr bool
	}{
		{"loop", models.DomainLoop, false},
		{"Loops", models.DomainLoop, false},
		{"sfx", models.DomainSFX, false},
		{"sound-effects", models.DomainSFX, false},
		{"playlists", models.DomainPlaylist, false},
		{"podcast", "", true},
	}
	for _, tt := range tests {
		got, err := models.ParseDomain(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDomain(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDomainKeysAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range models.Domains {
		for _, k := range []string{d.BookmarkKey(), d.RecentKey(), d.LastPlayedKey()} {
			if seen[k] {
				t.Errorf("key %q used twice", k)
			}
			seen[k] = true
		}
	}
	if len(seen) != 9 {
		t.Errorf("got %d keys, want 9", len(seen))
	}
	if models.DomainLoop.BookmarkKey() != "bookmarkedLoops" {
		t.Errorf("loop bookmark key = %q", models.DomainLoop.BookmarkKey())
	}
	if models.DomainSFX.RecentKey() != "recentSFXHistory" {
		t.Errorf("sfx recent key = %q", models.DomainSFX.RecentKey())
	}
	if models.DomainPlaylist.LastPlayedKey() != "lastPlayedPlaylists" {
		t.Errorf("playlist last-played key = %q", models.DomainPlaylist.LastPlayedKey())
	}
}

func TestHasPlayingSet(t *testing.T) {
	if models.DomainPlaylist.HasPlayingSet() {
		t.Error("playlists should not have a playing set")
	}
	if !models.DomainLoop.HasPlayingSet() || !models.DomainSFX.HasPlayingSet() {
		t.Error("loops and sfx should have a playing set")
	}
}
