package controller_test

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/micro-nova/ambiance-go/internal/bookmarks"
	"github.com/micro-nova/ambiance-go/internal/controller"
	"github.com/micro-nova/ambiance-go/internal/engine"
	"github.com/micro-nova/ambiance-go/internal/events"
	"github.com/micro-nova/ambiance-go/internal/export"
	"github.com/micro-nova/ambiance-go/internal/kv"
	"github.com/micro-nova/ambiance-go/internal/library"
	"github.com/micro-nova/ambiance-go/internal/models"
	"github.com/micro-nova/ambiance-go/internal/playback"
)

type fixture struct {
	ctrl     *controller.Controller
	engine   *engine.Mock
	kv       *kv.MemStore
	exporter *export.Exporter
	bus      *events.Bus
}

func newFixture(t *testing.T, items ...library.Item) *fixture {
	t.Helper()
	mem := kv.NewMemStore()
	bm := bookmarks.New(mem, nil)
	bm.Load()
	pb := playback.New(mem, nil)
	pb.Load()

	eng := engine.NewMock(0)
	bus := events.NewBus()
	exp := export.NewExporter("", 0, nil)
	ctrl := controller.New(controller.Deps{
		Bookmarks: bm,
		Playback:  pb,
		Engine:    eng,
		Music:     eng,
		Catalog:   library.New(nil, items...),
		Bus:       bus,
		Exporter:  exp,
	})
	eng.SetSink(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		eng.Close()
	})
	return &fixture{ctrl: ctrl, engine: eng, kv: mem, exporter: exp, bus: bus}
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBookmarkScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, appErr := f.ctrl.ToggleBookmark(ctx, models.DomainLoop, "Cave Echoes")
	if appErr != nil {
		t.Fatalf("ToggleBookmark: %v", appErr)
	}
	if got := state.Bookmarks.Loops; !reflect.DeepEqual(got, []string{"Cave Echoes"}) {
		t.Errorf("loops = %v", got)
	}
	f.ctrl.ToggleBookmark(ctx, models.DomainLoop, "Bat Swarm")
	state, _ = f.ctrl.RemoveBookmark(ctx, models.DomainLoop, "Cave Echoes")
	if got := state.Bookmarks.Loops; !reflect.DeepEqual(got, []string{"Bat Swarm"}) {
		t.Errorf("loops = %v, want [Bat Swarm]", got)
	}
}

func TestToggleBookmarkRejectsEmptyTitle(t *testing.T) {
	f := newFixture(t)
	_, appErr := f.ctrl.ToggleBookmark(context.Background(), models.DomainSFX, "  ")
	if appErr == nil || appErr.Status != 400 {
		t.Errorf("appErr = %v, want 400", appErr)
	}
}

func TestMoveBookmark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ctrl.SetInitialBookmarks(ctx, models.InitialBookmarks{Loops: []string{"A", "B", "C"}})

	state, appErr := f.ctrl.MoveBookmark(ctx, models.DomainLoop, 2, 0)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if got := state.Bookmarks.Loops; !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("loops = %v, want [C A B]", got)
	}

	state, _ = f.ctrl.MoveBookmarks(ctx, models.DomainLoop, []int{0, 1}, 3)
	if got := state.Bookmarks.Loops; !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Errorf("loops = %v, want [B C A]", got)
	}
}

func TestTogglePlayingReconcilesEngine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, appErr := f.ctrl.TogglePlaying(ctx, models.DomainLoop, "Rain"); appErr != nil {
		t.Fatal(appErr)
	}
	f.ctrl.TogglePlaying(ctx, models.DomainLoop, "Wind")
	if got := f.engine.Atmospheres(); !reflect.DeepEqual(got, []string{"Rain", "Wind"}) {
		t.Errorf("engine atmospheres = %v", got)
	}

	state, _ := f.ctrl.StopAll(ctx, models.DomainLoop)
	if len(state.Playback.PlayingLoops) != 0 {
		t.Errorf("playing = %v", state.Playback.PlayingLoops)
	}
	if got := f.engine.Atmospheres(); len(got) != 0 {
		t.Errorf("engine atmospheres after stop = %v", got)
	}
	if got := state.Playback.Recent.Loops; !reflect.DeepEqual(got, []string{"Wind", "Rain"}) {
		t.Errorf("recent = %v", got)
	}
}

func TestTogglePlayingRejectsPlaylists(t *testing.T) {
	f := newFixture(t)
	_, appErr := f.ctrl.TogglePlaying(context.Background(), models.DomainPlaylist, "Tavern")
	if appErr == nil || appErr.Status != 400 {
		t.Errorf("appErr = %v, want 400", appErr)
	}
}

func TestSoundEffectFinishedEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, _ := f.ctrl.TogglePlaying(ctx, models.DomainSFX, "Dragon Roar")
	if !reflect.DeepEqual(state.Playback.PlayingSFX, []string{"Dragon Roar"}) {
		t.Fatalf("playing sfx = %v", state.Playback.PlayingSFX)
	}
	played := state.Playback.LastPlayed.SFX["Dragon Roar"]

	if !f.engine.FinishSFX("Dragon Roar") {
		t.Fatal("engine did not have Dragon Roar live")
	}
	waitFor(t, "finished event", func() bool {
		s, _ := f.ctrl.State(ctx)
		return len(s.Playback.PlayingSFX) == 0
	})

	state, _ = f.ctrl.State(ctx)
	if got := state.Playback.Recent.SFX; !reflect.DeepEqual(got, []string{"Dragon Roar"}) {
		t.Errorf("recent = %v", got)
	}
	if got := state.Playback.LastPlayed.SFX["Dragon Roar"]; !got.Equal(played) {
		t.Errorf("last played changed: %v -> %v", played, got)
	}
}

func TestStaleFinishedEventStopsEngine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, appErr := f.ctrl.TogglePlaying(ctx, models.DomainSFX, "Dragon Roar"); appErr != nil {
		t.Fatal(appErr)
	}
	// A Finished left over from an earlier play of the same effect.
	f.ctrl.Deliver(events.Finished("Dragon Roar"))
	waitFor(t, "finished event", func() bool {
		s, _ := f.ctrl.State(ctx)
		return len(s.Playback.PlayingSFX) == 0
	})
	if got := f.engine.SFX(); len(got) != 0 {
		t.Errorf("engine sfx = %v, want none after the store stopped it", got)
	}

	state, _ := f.ctrl.TogglePlaying(ctx, models.DomainSFX, "Dragon Roar")
	if !reflect.DeepEqual(state.Playback.PlayingSFX, []string{"Dragon Roar"}) {
		t.Fatalf("playing sfx = %v", state.Playback.PlayingSFX)
	}
	if got := f.engine.SFX(); !reflect.DeepEqual(got, []string{"Dragon Roar"}) {
		t.Errorf("engine sfx after replay = %v", got)
	}
}

func TestPlayPlaylistRecordsOnStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if appErr := f.ctrl.PlayPlaylist(ctx, "Tavern"); appErr != nil {
		t.Fatal(appErr)
	}
	waitFor(t, "playlist started", func() bool {
		s, _ := f.ctrl.State(ctx)
		return len(s.Playback.Recent.Playlists) == 1
	})
	state, _ := f.ctrl.State(ctx)
	if state.Playback.Recent.Playlists[0] != "Tavern" {
		t.Errorf("recent playlists = %v", state.Playback.Recent.Playlists)
	}
	if _, ok := state.Playback.LastPlayed.Playlists["Tavern"]; !ok {
		t.Error("playlist not timestamped")
	}
}

func TestPlayPlaylistFailure(t *testing.T) {
	f := newFixture(t)
	f.engine.SetFailWrite(true)
	appErr := f.ctrl.PlayPlaylist(context.Background(), "Tavern")
	if appErr == nil || appErr.Status != 503 {
		t.Errorf("appErr = %v, want 503", appErr)
	}
}

func TestEngineFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.engine.SetFailWrite(true)
	state, appErr := f.ctrl.TogglePlaying(context.Background(), models.DomainLoop, "Rain")
	if appErr != nil {
		t.Fatalf("engine failures must not fail the toggle: %v", appErr)
	}
	if !reflect.DeepEqual(state.Playback.PlayingLoops, []string{"Rain"}) {
		t.Errorf("playing = %v", state.Playback.PlayingLoops)
	}
}

func TestSetPreferencesPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	master := 1.7
	ducking := false

	state, appErr := f.ctrl.SetPreferences(ctx, models.PreferencesUpdate{Master: &master, Ducking: &ducking})
	if appErr != nil {
		t.Fatal(appErr)
	}
	p := state.Playback.Preferences
	if p.Master != 1 || p.Ducking {
		t.Errorf("preferences = %+v", p)
	}
	if p.Music != models.DefaultMusicVolume {
		t.Errorf("music changed: %v", p.Music)
	}
}

func TestStatePublishedOnBus(t *testing.T) {
	f := newFixture(t)
	ch := f.bus.Subscribe("test")
	defer f.bus.Unsubscribe("test")

	f.ctrl.ToggleBookmark(context.Background(), models.DomainSFX, "Thunder")
	select {
	case s := <-ch:
		if !reflect.DeepEqual(s.Bookmarks.SFX, []string{"Thunder"}) {
			t.Errorf("published sfx = %v", s.Bookmarks.SFX)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestRenameItemPropagates(t *testing.T) {
	f := newFixture(t, library.Item{Title: "Rain", Domain: models.DomainLoop, Themes: []string{"weather"}})
	ctx := context.Background()
	f.ctrl.ToggleBookmark(ctx, models.DomainLoop, "Rain")
	f.ctrl.TogglePlaying(ctx, models.DomainLoop, "Rain")

	state, appErr := f.ctrl.RenameItem(ctx, models.DomainLoop, "Rain", "Heavy Rain")
	if appErr != nil {
		t.Fatal(appErr)
	}
	if !reflect.DeepEqual(state.Bookmarks.Loops, []string{"Heavy Rain"}) {
		t.Errorf("bookmarks = %v", state.Bookmarks.Loops)
	}
	if !reflect.DeepEqual(state.Playback.PlayingLoops, []string{"Heavy Rain"}) {
		t.Errorf("playing = %v", state.Playback.PlayingLoops)
	}
	if !reflect.DeepEqual(f.engine.Atmospheres(), []string{"Heavy Rain"}) {
		t.Errorf("engine = %v", f.engine.Atmospheres())
	}
	if _, appErr := f.ctrl.LookupItem(models.DomainLoop, "Heavy Rain"); appErr != nil {
		t.Errorf("catalog not renamed: %v", appErr)
	}
}

func TestRenameItemConflict(t *testing.T) {
	f := newFixture(t,
		library.Item{Title: "Rain", Domain: models.DomainLoop},
		library.Item{Title: "Wind", Domain: models.DomainLoop},
	)
	ctx := context.Background()
	f.ctrl.ToggleBookmark(ctx, models.DomainLoop, "Rain")

	_, appErr := f.ctrl.RenameItem(ctx, models.DomainLoop, "Rain", "Wind")
	if appErr == nil || appErr.Status != 409 {
		t.Fatalf("appErr = %v, want 409", appErr)
	}
	state, _ := f.ctrl.State(ctx)
	if !reflect.DeepEqual(state.Bookmarks.Loops, []string{"Rain"}) {
		t.Errorf("bookmarks changed on failed rename: %v", state.Bookmarks.Loops)
	}
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t, library.Item{Title: "Thunder", Domain: models.DomainSFX})
	ctx := context.Background()
	f.ctrl.ToggleBookmark(ctx, models.DomainSFX, "Thunder")
	f.ctrl.TogglePlaying(ctx, models.DomainSFX, "Thunder")

	state, appErr := f.ctrl.DeleteItem(ctx, models.DomainSFX, "Thunder")
	if appErr != nil {
		t.Fatal(appErr)
	}
	if len(state.Bookmarks.SFX) != 0 || len(state.Playback.PlayingSFX) != 0 || len(state.Playback.Recent.SFX) != 0 {
		t.Errorf("traces left: %+v", state)
	}
	if len(f.engine.SFX()) != 0 {
		t.Errorf("engine still playing %v", f.engine.SFX())
	}
	if _, appErr := f.ctrl.LookupItem(models.DomainSFX, "Thunder"); appErr == nil || appErr.Status != 503 {
		t.Errorf("lookup after delete = %v", appErr)
	}
}

func TestEditsAreExported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	level := 0.25

	f.ctrl.ToggleBookmark(ctx, models.DomainLoop, "Cave Echoes")
	f.ctrl.SetPreferences(ctx, models.PreferencesUpdate{SFX: &level})

	doc := f.exporter.Last()
	if !reflect.DeepEqual(doc.Bookmarks.Loops, []string{"Cave Echoes"}) {
		t.Errorf("exported loops = %v", doc.Bookmarks.Loops)
	}
	if doc.Volumes.SFX == nil || *doc.Volumes.SFX != 0.25 {
		t.Errorf("exported sfx volume = %v", doc.Volumes.SFX)
	}
}

func TestImportDoesNotReexport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ctrl.ToggleBookmark(ctx, models.DomainPlaylist, "Tavern")
	before := f.exporter.Last()

	doc := models.Export{
		Version:   models.ExportVersion,
		Bookmarks: models.ExportMarks{Loops: []string{"Rain", "Rain", "Wind"}, SFX: []string{"Thunder"}},
		Volumes: models.ExportLevel{
			Master:     models.Level(0.5),
			Music:      models.Level(0.4),
			Atmosphere: models.Level(0.3),
			SFX:        models.Level(0.2),
		},
	}
	state, appErr := f.ctrl.Import(ctx, doc)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if !reflect.DeepEqual(state.Bookmarks.Loops, []string{"Rain", "Wind"}) {
		t.Errorf("loops = %v", state.Bookmarks.Loops)
	}
	if !reflect.DeepEqual(state.Bookmarks.Playlists, []string{"Tavern"}) {
		t.Errorf("playlists must survive import: %v", state.Bookmarks.Playlists)
	}
	if state.Playback.Preferences.Master != 0.5 || !state.Playback.Preferences.Ducking {
		t.Errorf("preferences = %+v", state.Playback.Preferences)
	}
	if after := f.exporter.Last(); len(after.Bookmarks.Loops) != 0 || !after.ExportedAt.Equal(before.ExportedAt) {
		t.Error("import triggered an export")
	}

	var stored []string
	f.kv.Get(models.KeyBookmarkedLoops, &stored)
	if !reflect.DeepEqual(stored, []string{"Rain", "Wind"}) {
		t.Errorf("persisted loops = %v", stored)
	}
}

func TestImportWithoutVolumesKeepsLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	music := 0.3
	f.ctrl.SetPreferences(ctx, models.PreferencesUpdate{Music: &music})

	doc, err := export.Decode(strings.NewReader(`{"version":1,"bookmarks":{"loops":["Cave Echoes"],"sfx":[]}}`))
	if err != nil {
		t.Fatal(err)
	}
	state, appErr := f.ctrl.Import(ctx, doc)
	if appErr != nil {
		t.Fatal(appErr)
	}

	want := models.DefaultPreferences()
	want.Music = 0.3
	if got := state.Playback.Preferences; got != want {
		t.Errorf("preferences after import = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(state.Bookmarks.Loops, []string{"Cave Echoes"}) {
		t.Errorf("loops = %v", state.Bookmarks.Loops)
	}
}

func TestImportRejectsFutureVersion(t *testing.T) {
	f := newFixture(t)
	_, appErr := f.ctrl.Import(context.Background(), models.Export{Version: models.ExportVersion + 1})
	if appErr == nil || appErr.Status != 400 {
		t.Errorf("appErr = %v, want 400", appErr)
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ctrl.ToggleBookmark(ctx, models.DomainSFX, "Thunder")

	doc, appErr := f.ctrl.Export(ctx)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if doc.Version != models.ExportVersion || !reflect.DeepEqual(doc.Bookmarks.SFX, []string{"Thunder"}) {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Volumes.Master == nil || *doc.Volumes.Master != models.DefaultMasterVolume {
		t.Errorf("master = %v", doc.Volumes.Master)
	}
}

func TestStoppedController(t *testing.T) {
	mem := kv.NewMemStore()
	ctrl := controller.New(controller.Deps{
		Bookmarks: bookmarks.New(mem, nil),
		Playback:  playback.New(mem, nil),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ctrl.Run(ctx)

	if _, appErr := ctrl.State(context.Background()); appErr == nil || appErr.Status != 503 {
		t.Errorf("appErr = %v, want 503", appErr)
	}
}
