package models

import "math"

// MaxRecent caps every recent list.
const MaxRecent = 20

// Default mixer levels, used only when nothing has been persisted.
const (
	DefaultMasterVolume     = 0.9
	DefaultMusicVolume      = 0.72
	DefaultAtmosphereVolume = 0.56
	DefaultSFXVolume        = 0.48
	DefaultDucking          = true
)

// DefaultPreferences returns the factory mixer settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Master:     DefaultMasterVolume,
		Music:      DefaultMusicVolume,
		Atmosphere: DefaultAtmosphereVolume,
		SFX:        DefaultSFXVolume,
		Ducking:    DefaultDucking,
	}
}

// ClampLevel clamps v to [0, 1]. NaN maps to 0.
func ClampLevel(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
