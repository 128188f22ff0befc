package playback_test

import (
	"reflect"
	"testing"

	"github.com/micro-nova/ambiance-go/internal/models"
)

func TestDefaultsWithoutPersistedValues(t *testing.T) {
	s, _, _ := newTestStore(t)
	if got := s.Preferences(); got != models.DefaultPreferences() {
		t.Errorf("Preferences() = %+v, want defaults", got)
	}
}

func TestVolumeSettersClampAndPersist(t *testing.T) {
	s, mem, _ := newTestStore(t)
	dirty := 0
	s.OnDirty(func() { dirty++ })

	s.SetMasterVolume(1.4)
	s.SetMusicVolume(-0.2)
	s.SetAtmosphereVolume(0.5)
	s.SetSFXVolume(0.25)

	p := s.Preferences()
	if p.Master != 1 || p.Music != 0 || p.Atmosphere != 0.5 || p.SFX != 0.25 {
		t.Errorf("preferences = %+v", p)
	}
	want := []string{"masterVolume", "musicVolume", "atmosphereVolume", "sfxVolume"}
	if got := mem.Writes(); !reflect.DeepEqual(got, want) {
		t.Errorf("writes = %v, want %v", got, want)
	}
	var stored float64
	mem.Get("masterVolume", &stored)
	if stored != 1 {
		t.Errorf("persisted master = %v, want 1", stored)
	}
	if dirty != 4 {
		t.Errorf("dirty = %d, want 4", dirty)
	}
}

func TestDuckingDoesNotMarkDirty(t *testing.T) {
	s, mem, _ := newTestStore(t)
	dirty := 0
	s.OnDirty(func() { dirty++ })
	s.SetDucking(false)
	if s.Preferences().Ducking {
		t.Error("ducking still on")
	}
	if got := mem.Writes(); !reflect.DeepEqual(got, []string{"sfxDuckingEnabled"}) {
		t.Errorf("writes = %v", got)
	}
	if dirty != 0 {
		t.Errorf("dirty = %d, want 0", dirty)
	}
}

func TestApplyExportPreferencesSuppressesDirty(t *testing.T) {
	s, mem, _ := newTestStore(t)
	dirty := 0
	s.OnDirty(func() { dirty++ })

	s.ApplyExportPreferences(models.ExportLevel{
		Master:     models.Level(0.1),
		Music:      models.Level(0.2),
		Atmosphere: models.Level(0.3),
		SFX:        models.Level(0.4),
	})

	if dirty != 0 {
		t.Errorf("dirty hook fired %d times during import", dirty)
	}
	if s.Importing() {
		t.Error("guard still set")
	}
	p := s.Preferences()
	if p.Master != 0.1 || p.Music != 0.2 || p.Atmosphere != 0.3 || p.SFX != 0.4 {
		t.Errorf("preferences = %+v", p)
	}
	if got := len(mem.Writes()); got != 4 {
		t.Errorf("writes = %d, want 4", got)
	}
	if !p.Ducking {
		t.Error("ducking must not change on import")
	}
}

func TestApplyExportPreferencesSkipsAbsentLevels(t *testing.T) {
	s, mem, _ := newTestStore(t)
	s.SetMusicVolume(0.3)
	mem.ResetWrites()

	s.ApplyExportPreferences(models.ExportLevel{Master: models.Level(0.6)})

	want := models.DefaultPreferences()
	want.Master = 0.6
	want.Music = 0.3
	if got := s.Preferences(); got != want {
		t.Errorf("Preferences() = %+v, want %+v", got, want)
	}
	if got := mem.Writes(); !reflect.DeepEqual(got, []string{models.KeyMasterVolume}) {
		t.Errorf("writes = %v, want only %s", got, models.KeyMasterVolume)
	}

	s.ApplyExportPreferences(models.ExportLevel{})
	if got := s.Preferences(); got != want {
		t.Errorf("empty import changed preferences to %+v", got)
	}
}
