package playback

import "github.com/micro-nova/ambiance-go/internal/models"

// Preferences returns the current mixer settings.
func (s *Store) Preferences() models.Preferences { return s.prefs }

// SetMasterVolume clamps v to [0, 1], stores and persists it.
func (s *Store) SetMasterVolume(v float64) {
	s.setLevel(&s.prefs.Master, models.KeyMasterVolume, v)
}

// SetMusicVolume clamps v to [0, 1], stores and persists it.
func (s *Store) SetMusicVolume(v float64) {
	s.setLevel(&s.prefs.Music, models.KeyMusicVolume, v)
}

// SetAtmosphereVolume clamps v to [0, 1], stores and persists it.
func (s *Store) SetAtmosphereVolume(v float64) {
	s.setLevel(&s.prefs.Atmosphere, models.KeyAtmosphereVolume, v)
}

// SetSFXVolume clamps v to [0, 1], stores and persists it.
func (s *Store) SetSFXVolume(v float64) {
	s.setLevel(&s.prefs.SFX, models.KeySFXVolume, v)
}

// SetDucking stores and persists the ducking toggle. Ducking is not
// exported, so it never marks dirty.
func (s *Store) SetDucking(on bool) {
	s.prefs.Ducking = on
	s.write(models.KeyDucking, on)
}

// ApplyExportPreferences sets the levels present in an imported document.
// Nil levels keep their current value. Each applied level is persisted; the
// dirty hook is suppressed.
func (s *Store) ApplyExportPreferences(levels models.ExportLevel) {
	s.importing = true
	defer func() { s.importing = false }()

	if levels.Master != nil {
		s.SetMasterVolume(*levels.Master)
	}
	if levels.Music != nil {
		s.SetMusicVolume(*levels.Music)
	}
	if levels.Atmosphere != nil {
		s.SetAtmosphereVolume(*levels.Atmosphere)
	}
	if levels.SFX != nil {
		s.SetSFXVolume(*levels.SFX)
	}
}

func (s *Store) setLevel(field *float64, key string, v float64) {
	*field = models.ClampLevel(v)
	s.write(key, *field)
	s.markDirty()
}
