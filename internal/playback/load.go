package playback

import (
	"math"
	"time"

	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/ordered"
)

// Load reads recents, last-played maps and preferences from the key-value
// store. Values that are missing or unreadable keep their defaults; loaded
// values are normalized (recents deduped and capped, levels clamped).
func (s *Store) Load() {
	for _, d := range models.Domains {
		var recent []string
		if s.read(d.RecentKey(), &recent) {
			recent = ordered.Dedupe(recent)
			if len(recent) > models.MaxRecent {
				recent = recent[:models.MaxRecent]
			}
			s.recent[d] = recent
		}

		var stamps map[string]float64
		if s.read(d.LastPlayedKey(), &stamps) {
			s.lastPlayed[d] = decodeTimes(stamps)
		}
	}

	s.readLevel(models.KeyMasterVolume, &s.prefs.Master)
	s.readLevel(models.KeyMusicVolume, &s.prefs.Music)
	s.readLevel(models.KeyAtmosphereVolume, &s.prefs.Atmosphere)
	s.readLevel(models.KeySFXVolume, &s.prefs.SFX)
	var ducking bool
	if s.read(models.KeyDucking, &ducking) {
		s.prefs.Ducking = ducking
	}
}

func (s *Store) read(key string, dest any) bool {
	ok, err := s.kv.Get(key, dest)
	if err != nil {
		s.logger.Warn("playback: unreadable persisted value, using default", "key", key, "err", err)
		return false
	}
	return ok
}

func (s *Store) readLevel(key string, field *float64) {
	var v float64
	if s.read(key, &v) {
		*field = models.ClampLevel(v)
	}
}

// encodeTimes converts timestamps to unix-epoch float seconds.
func encodeTimes(m map[string]time.Time) map[string]float64 {
	out := make(map[string]float64, len(m))
	for title, ts := range m {
		out[title] = float64(ts.UnixNano()) / 1e9
	}
	return out
}

func decodeTimes(m map[string]float64) map[string]time.Time {
	out := make(map[string]time.Time, len(m))
	for title, secs := range m {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			continue
		}
		whole, frac := math.Modf(secs)
		out[title] = time.Unix(int64(whole), int64(frac*1e9))
	}
	return out
}
