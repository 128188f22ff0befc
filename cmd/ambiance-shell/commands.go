package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/micro-nova/ambiance-go/internal/controller"
	"github.com/micro-nova/ambiance-go/internal/export"
	"github.com/micro-nova/ambiance-go/internal/models"
)

type command struct {
	name   string
	usage  string
	domain bool // first argument is a domain
	run    func(sh *shell, ctx context.Context, args string) error
}

var commands []command

func init() {
	commands = []command{
		{"bookmark", "bookmark <domain> <title>", true, (*shell).bookmark},
		{"unbookmark", "unbookmark <domain> <title>", true, (*shell).unbookmark},
		{"move", "move <domain> <from> <to>", true, (*shell).move},
		{"play", "play <domain> <title>", true, (*shell).play},
		{"stop", "stop <domain>", true, (*shell).stop},
		{"rename", "rename <domain> <old> => <new>", true, (*shell).rename},
		{"delete", "delete <domain> <title>", true, (*shell).delete},
		{"search", "search <query>", false, (*shell).search},
		{"volume", "volume master|music|atmosphere|sfx <0.0-1.0>", false, (*shell).volume},
		{"ducking", "ducking on|off", false, (*shell).ducking},
		{"export", "export [path]", false, (*shell).export},
		{"import", "import <path>", false, (*shell).importFile},
		{"state", "state", false, (*shell).state},
		{"help", "help", false, (*shell).help},
		{"quit", "quit", false, nil},
	}
}

// shell executes console commands against a running controller.
type shell struct {
	ctrl *controller.Controller
	out  io.Writer
}

// exec runs one command line. It reports true when the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) (bool, error) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)
	if name == "quit" || name == "exit" {
		return true, nil
	}
	for _, c := range commands {
		if c.name == name {
			return false, c.run(sh, ctx, args)
		}
	}
	return false, fmt.Errorf("unknown command %q (try 'help')", name)
}

// domainArgs splits "<domain> <rest>" and requires rest when needRest is set.
func domainArgs(args string, needRest bool) (models.Domain, string, error) {
	first, rest, _ := strings.Cut(args, " ")
	d, err := parseDomain(first)
	if err != nil {
		return "", "", err
	}
	rest = strings.TrimSpace(rest)
	if needRest && rest == "" {
		return "", "", fmt.Errorf("missing title")
	}
	return d, rest, nil
}

func parseDomain(s string) (models.Domain, error) {
	if s == "" {
		return "", fmt.Errorf("missing domain (playlist, loop or sfx)")
	}
	return models.ParseDomain(s)
}

// done reports an AppError or prints the affected domain after a change.
func (sh *shell) done(state models.State, appErr *models.AppError, d models.Domain) error {
	if appErr != nil {
		return appErr
	}
	fmt.Fprintf(sh.out, "bookmarks: %s\n", strings.Join(state.Bookmarks.For(d), ", "))
	if d.HasPlayingSet() {
		playing := state.Playback.PlayingLoops
		if d == models.DomainSFX {
			playing = state.Playback.PlayingSFX
		}
		fmt.Fprintf(sh.out, "playing:   %s\n", strings.Join(playing, ", "))
	}
	return nil
}

func (sh *shell) bookmark(ctx context.Context, args string) error {
	d, title, err := domainArgs(args, true)
	if err != nil {
		return err
	}
	bookmarks, appErr := sh.ctrl.Bookmarks(ctx, d)
	if appErr != nil {
		return appErr
	}
	for _, b := range bookmarks {
		if b == title {
			fmt.Fprintf(sh.out, "%q is already bookmarked\n", title)
			return nil
		}
	}
	state, appErr := sh.ctrl.ToggleBookmark(ctx, d, title)
	return sh.done(state, appErr, d)
}

func (sh *shell) unbookmark(ctx context.Context, args string) error {
	d, title, err := domainArgs(args, true)
	if err != nil {
		return err
	}
	state, appErr := sh.ctrl.RemoveBookmark(ctx, d, title)
	return sh.done(state, appErr, d)
}

func (sh *shell) move(ctx context.Context, args string) error {
	d, rest, err := domainArgs(args, true)
	if err != nil {
		return err
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return fmt.Errorf("usage: move <domain> <from> <to>")
	}
	from, err1 := strconv.Atoi(fields[0])
	to, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("from and to must be integers")
	}
	state, appErr := sh.ctrl.MoveBookmark(ctx, d, from, to)
	return sh.done(state, appErr, d)
}

// play starts a playlist, or toggles a loop or sound effect.
func (sh *shell) play(ctx context.Context, args string) error {
	d, title, err := domainArgs(args, true)
	if err != nil {
		return err
	}
	if d == models.DomainPlaylist {
		if appErr := sh.ctrl.PlayPlaylist(ctx, title); appErr != nil {
			return appErr
		}
		fmt.Fprintf(sh.out, "playing playlist %q\n", title)
		return nil
	}
	state, appErr := sh.ctrl.TogglePlaying(ctx, d, title)
	return sh.done(state, appErr, d)
}

func (sh *shell) stop(ctx context.Context, args string) error {
	d, _, err := domainArgs(args, false)
	if err != nil {
		return err
	}
	state, appErr := sh.ctrl.StopAll(ctx, d)
	return sh.done(state, appErr, d)
}

func (sh *shell) rename(ctx context.Context, args string) error {
	d, rest, err := domainArgs(args, true)
	if err != nil {
		return err
	}
	oldTitle, newTitle, ok := strings.Cut(rest, "=>")
	oldTitle, newTitle = strings.TrimSpace(oldTitle), strings.TrimSpace(newTitle)
	if !ok || oldTitle == "" || newTitle == "" {
		return fmt.Errorf("usage: rename <domain> <old> => <new>")
	}
	state, appErr := sh.ctrl.RenameItem(ctx, d, oldTitle, newTitle)
	return sh.done(state, appErr, d)
}

func (sh *shell) delete(ctx context.Context, args string) error {
	d, title, err := domainArgs(args, true)
	if err != nil {
		return err
	}
	state, appErr := sh.ctrl.DeleteItem(ctx, d, title)
	return sh.done(state, appErr, d)
}

func (sh *shell) search(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: search <query>")
	}
	results := sh.ctrl.SearchLibrary(args, "")
	if len(results) == 0 {
		fmt.Fprintln(sh.out, "no matches")
		return nil
	}
	for _, r := range results {
		if r.MatchedTheme != "" {
			fmt.Fprintf(sh.out, "%-8s %s (theme %q)\n", r.Domain, r.Title, r.MatchedTheme)
		} else {
			fmt.Fprintf(sh.out, "%-8s %s\n", r.Domain, r.Title)
		}
	}
	return nil
}

func (sh *shell) volume(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("usage: volume master|music|atmosphere|sfx <level>")
	}
	level, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("invalid level %q", fields[1])
	}
	var upd models.PreferencesUpdate
	switch strings.ToLower(fields[0]) {
	case "master":
		upd.Master = &level
	case "music":
		upd.Music = &level
	case "atmosphere", "loop", "loops":
		upd.Atmosphere = &level
	case "sfx":
		upd.SFX = &level
	default:
		return fmt.Errorf("unknown volume %q", fields[0])
	}
	return sh.setPreferences(ctx, upd)
}

func (sh *shell) ducking(ctx context.Context, args string) error {
	var on bool
	switch strings.ToLower(args) {
	case "on", "true", "1":
		on = true
	case "off", "false", "0":
	default:
		return fmt.Errorf("usage: ducking on|off")
	}
	return sh.setPreferences(ctx, models.PreferencesUpdate{Ducking: &on})
}

func (sh *shell) setPreferences(ctx context.Context, upd models.PreferencesUpdate) error {
	state, appErr := sh.ctrl.SetPreferences(ctx, upd)
	if appErr != nil {
		return appErr
	}
	p := state.Playback.Preferences
	fmt.Fprintf(sh.out, "master %.2f  music %.2f  atmosphere %.2f  sfx %.2f  ducking %t\n",
		p.Master, p.Music, p.Atmosphere, p.SFX, p.Ducking)
	return nil
}

// export prints the export document, or writes it to a file.
func (sh *shell) export(ctx context.Context, args string) error {
	doc, appErr := sh.ctrl.Export(ctx)
	if appErr != nil {
		return appErr
	}
	if args == "" {
		return sh.printJSON(doc)
	}
	if err := export.Write(args, doc); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "exported to %s\n", args)
	return nil
}

func (sh *shell) importFile(ctx context.Context, args string) error {
	if args == "" {
		return fmt.Errorf("usage: import <path>")
	}
	doc, err := export.Read(args)
	if err != nil {
		return err
	}
	if _, appErr := sh.ctrl.Import(ctx, doc); appErr != nil {
		return appErr
	}
	fmt.Fprintf(sh.out, "imported %d loop and %d sfx bookmarks\n", len(doc.Bookmarks.Loops), len(doc.Bookmarks.SFX))
	return nil
}

func (sh *shell) state(ctx context.Context, _ string) error {
	state, appErr := sh.ctrl.State(ctx)
	if appErr != nil {
		return appErr
	}
	return sh.printJSON(state)
}

func (sh *shell) help(context.Context, string) error {
	for _, c := range commands {
		fmt.Fprintf(sh.out, "  %s\n", c.usage)
	}
	return nil
}

func (sh *shell) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, string(data))
	return nil
}
