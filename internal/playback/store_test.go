package playback_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/micro-nova/ambiance-go/internal/kv"
	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/playback"
)

// fakeClock returns a fixed time that tests can advance.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*playback.Store, *kv.MemStore, *fakeClock) {
	t.Helper()
	mem := kv.NewMemStore()
	clock := &fakeClock{t: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
	s := playback.New(mem, nil, playback.WithClock(clock.Now))
	s.Load()
	return s, mem, clock
}

func TestPlaySoundEffectScenario(t *testing.T) {
	s, mem, clock := newTestStore(t)

	if !s.Toggle(models.DomainSFX, "Dragon Roar") {
		t.Fatal("Toggle should report playing")
	}
	if !s.IsPlaying(models.DomainSFX, "Dragon Roar") {
		t.Error("Dragon Roar should be playing")
	}
	if got := s.Recent(models.DomainSFX); len(got) == 0 || got[0] != "Dragon Roar" {
		t.Errorf("recent = %v, want Dragon Roar first", got)
	}
	ts, ok := s.LastPlayed(models.DomainSFX, "Dragon Roar")
	if !ok || !ts.Equal(clock.Now()) {
		t.Errorf("last played = %v (%v), want %v", ts, ok, clock.Now())
	}

	var stamps map[string]float64
	if ok, _ := mem.Get("lastPlayedSFX", &stamps); !ok {
		t.Fatal("lastPlayedSFX not persisted")
	}
	if stamps["Dragon Roar"] != float64(clock.Now().Unix()) {
		t.Errorf("persisted stamp = %v, want %v", stamps["Dragon Roar"], clock.Now().Unix())
	}

	clock.Advance(time.Minute)
	if !s.Finished(models.DomainSFX, "Dragon Roar") {
		t.Error("Finished should report the title was playing")
	}
	if s.IsPlaying(models.DomainSFX, "Dragon Roar") {
		t.Error("Dragon Roar still playing after finish")
	}
	if got := s.Recent(models.DomainSFX); len(got) != 1 || got[0] != "Dragon Roar" {
		t.Errorf("recent changed on finish: %v", got)
	}
	if ts2, _ := s.LastPlayed(models.DomainSFX, "Dragon Roar"); !ts2.Equal(ts) {
		t.Errorf("last played changed on finish: %v", ts2)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Toggle(models.DomainLoop, "Rain")
	s.Toggle(models.DomainLoop, "Wind")
	before := s.Playing(models.DomainLoop)

	s.Toggle(models.DomainLoop, "Fire")
	s.Toggle(models.DomainLoop, "Fire")
	if got := s.Playing(models.DomainLoop); !reflect.DeepEqual(got, before) {
		t.Errorf("playing = %v, want %v", got, before)
	}
}

func TestStopDoesNotTouchRecency(t *testing.T) {
	s, mem, _ := newTestStore(t)
	s.Toggle(models.DomainLoop, "Rain")
	mem.ResetWrites()

	if s.Toggle(models.DomainLoop, "Rain") {
		t.Error("second Toggle should report stopped")
	}
	if w := mem.Writes(); len(w) != 0 {
		t.Errorf("stopping wrote %v", w)
	}
}

func TestPlaylistHasNoPlayingSet(t *testing.T) {
	s, mem, _ := newTestStore(t)
	if s.Toggle(models.DomainPlaylist, "Tavern") {
		t.Error("Toggle on playlists should be a no-op")
	}
	if s.IsPlaying(models.DomainPlaylist, "Tavern") {
		t.Error("playlists are never in a playing set")
	}
	if w := mem.Writes(); len(w) != 0 {
		t.Errorf("writes = %v", w)
	}

	s.MarkStarted(models.DomainPlaylist, "Tavern")
	if got := s.Recent(models.DomainPlaylist); !reflect.DeepEqual(got, []string{"Tavern"}) {
		t.Errorf("recent = %v", got)
	}
	if _, ok := s.LastPlayed(models.DomainPlaylist, "Tavern"); !ok {
		t.Error("playlist start not timestamped")
	}
}

func TestStopAll(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Toggle(models.DomainLoop, "Rain")
	s.Toggle(models.DomainLoop, "Wind")
	s.Toggle(models.DomainSFX, "Thunder")

	if !s.StopAll(models.DomainLoop) {
		t.Error("StopAll should report a change")
	}
	if len(s.Playing(models.DomainLoop)) != 0 {
		t.Errorf("loops still playing: %v", s.Playing(models.DomainLoop))
	}
	if !s.IsPlaying(models.DomainSFX, "Thunder") {
		t.Error("StopAll(loop) must not stop sfx")
	}
	if s.StopAll(models.DomainLoop) {
		t.Error("StopAll on empty set should report no change")
	}
	if s.StopAll(models.DomainPlaylist) {
		t.Error("StopAll(playlist) should be a no-op")
	}
}

func TestRecentCap(t *testing.T) {
	s, mem, _ := newTestStore(t)
	for i := 0; i < 25; i++ {
		s.AddRecent(models.DomainLoop, fmt.Sprintf("loop %02d", i))
	}
	got := s.Recent(models.DomainLoop)
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	for i := 0; i < 20; i++ {
		if want := fmt.Sprintf("loop %02d", 24-i); got[i] != want {
			t.Errorf("recent[%d] = %q, want %q", i, got[i], want)
		}
	}
	var stored []string
	mem.Get("recentLoopHistory", &stored)
	if !reflect.DeepEqual(stored, got) {
		t.Errorf("persisted = %v, want %v", stored, got)
	}
}

func TestRenamePreservesRecentPosition(t *testing.T) {
	s, mem, _ := newTestStore(t)
	for _, title := range []string{"C", "B", "A"} {
		s.AddRecent(models.DomainSFX, title)
	}
	if got := s.Recent(models.DomainSFX); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("setup recent = %v", got)
	}

	s.Rename(models.DomainSFX, "B", "D")
	if got := s.Recent(models.DomainSFX); !reflect.DeepEqual(got, []string{"A", "D", "C"}) {
		t.Errorf("recent = %v, want [A D C]", got)
	}

	// Only the recent list was touched.
	mem.ResetWrites()
	s.Rename(models.DomainSFX, "C", "E")
	if got, want := mem.Writes(), []string{"recentSFXHistory"}; !reflect.DeepEqual(got, want) {
		t.Errorf("writes = %v, want %v", got, want)
	}
}

func TestRenameMigratesPlayingAndTimestamp(t *testing.T) {
	s, mem, clock := newTestStore(t)
	s.Toggle(models.DomainLoop, "Rain")
	mem.ResetWrites()

	s.Rename(models.DomainLoop, "Rain", "Heavy Rain")
	if s.IsPlaying(models.DomainLoop, "Rain") || !s.IsPlaying(models.DomainLoop, "Heavy Rain") {
		t.Error("playing membership not migrated")
	}
	if _, ok := s.LastPlayed(models.DomainLoop, "Rain"); ok {
		t.Error("old timestamp still present")
	}
	if ts, ok := s.LastPlayed(models.DomainLoop, "Heavy Rain"); !ok || !ts.Equal(clock.Now()) {
		t.Errorf("timestamp not migrated: %v %v", ts, ok)
	}
	if got, want := mem.Writes(), []string{"recentLoopHistory", "lastPlayedLoops"}; !reflect.DeepEqual(got, want) {
		t.Errorf("writes = %v, want %v", got, want)
	}

	mem.ResetWrites()
	s.Rename(models.DomainLoop, "Unknown", "Other")
	if w := mem.Writes(); len(w) != 0 {
		t.Errorf("untouched rename wrote %v", w)
	}
	s.Rename(models.DomainLoop, "Heavy Rain", "Heavy Rain")
	if w := mem.Writes(); len(w) != 0 {
		t.Errorf("same-title rename wrote %v", w)
	}
}

func TestRemoveState(t *testing.T) {
	s, mem, _ := newTestStore(t)
	s.Toggle(models.DomainSFX, "Thunder")
	mem.ResetWrites()

	s.RemoveState(models.DomainSFX, "Thunder")
	if s.IsPlaying(models.DomainSFX, "Thunder") {
		t.Error("still playing")
	}
	if len(s.Recent(models.DomainSFX)) != 0 {
		t.Errorf("recent = %v", s.Recent(models.DomainSFX))
	}
	if _, ok := s.LastPlayed(models.DomainSFX, "Thunder"); ok {
		t.Error("timestamp not removed")
	}
	if got, want := mem.Writes(), []string{"recentSFXHistory", "lastPlayedSFX"}; !reflect.DeepEqual(got, want) {
		t.Errorf("writes = %v, want %v", got, want)
	}

	mem.ResetWrites()
	s.RemoveState(models.DomainSFX, "Never Played")
	if got, want := mem.Writes(), []string{"recentSFXHistory"}; !reflect.DeepEqual(got, want) {
		t.Errorf("writes = %v, want %v", got, want)
	}
}

func TestRemoveRecentOnly(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.Toggle(models.DomainLoop, "Rain")
	s.RemoveRecent(models.DomainLoop, "Rain")
	if len(s.Recent(models.DomainLoop)) != 0 {
		t.Error("recent entry not dismissed")
	}
	if !s.IsPlaying(models.DomainLoop, "Rain") {
		t.Error("RemoveRecent must not stop playback")
	}
	if _, ok := s.LastPlayed(models.DomainLoop, "Rain"); !ok {
		t.Error("RemoveRecent must keep the timestamp")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	s, mem, clock := newTestStore(t)
	s.Toggle(models.DomainLoop, "Rain")
	s.MarkStarted(models.DomainPlaylist, "Tavern")
	s.SetMasterVolume(0.3)
	s.SetDucking(false)

	reloaded := playback.New(mem, nil)
	reloaded.Load()

	if reloaded.IsPlaying(models.DomainLoop, "Rain") {
		t.Error("playing sets must not survive a restart")
	}
	if got := reloaded.Recent(models.DomainLoop); !reflect.DeepEqual(got, []string{"Rain"}) {
		t.Errorf("recent = %v", got)
	}
	if ts, ok := reloaded.LastPlayed(models.DomainPlaylist, "Tavern"); !ok || ts.Unix() != clock.Now().Unix() {
		t.Errorf("last played = %v %v", ts, ok)
	}
	p := reloaded.Preferences()
	if p.Master != 0.3 || p.Ducking {
		t.Errorf("preferences = %+v", p)
	}
	if p.Music != models.DefaultMusicVolume {
		t.Errorf("music = %v, want default", p.Music)
	}
}

func TestLoadNormalizes(t *testing.T) {
	mem := kv.NewMemStore()
	long := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		long = append(long, fmt.Sprintf("t%d", i%25))
	}
	_ = mem.Set("recentSFXHistory", long)
	_ = mem.Set("sfxVolume", 3.5)
	_ = mem.Set("lastPlayedLoops", map[string]float64{"Rain": 1700000000.5})

	s := playback.New(mem, nil)
	s.Load()

	if got := s.Recent(models.DomainSFX); len(got) != 20 {
		t.Errorf("recent len = %d, want 20", len(got))
	}
	if got := s.Preferences().SFX; got != 1 {
		t.Errorf("sfx volume = %v, want clamped 1", got)
	}
	ts, ok := s.LastPlayed(models.DomainLoop, "Rain")
	if !ok || ts.Unix() != 1700000000 || ts.Nanosecond() != 500000000 {
		t.Errorf("last played = %v %v", ts, ok)
	}
}
