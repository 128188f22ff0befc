// Command ambiance-shell is an interactive console over the same stores and
// controller the daemon uses. Run it against a stopped daemon's data
// directory or with the memory backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/micro-nova/ambiance-go/internal/app"
	"github.com/micro-nova/ambiance-go/internal/config"
	"github.com/micro-nova/ambiance-go/internal/logging"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "config file (default: ~/.config/ambiance/config.yaml)")
		debug   = flag.Bool("debug", false, "log to stderr at debug level")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ambiance-shell:", err)
		os.Exit(1)
	}

	logger := logging.Null()
	if *debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := run(cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, "ambiance-shell:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Controller.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
		if err := a.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "ambiance-shell: flush:", err)
		}
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "ambiance> ",
		AutoComplete: completer(a),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sh := &shell{ctrl: a.Controller, out: rl.Stdout()}
	fmt.Fprintf(sh.out, "ambiance shell (store %s). Type 'help' for commands.\n", a.Store.Path())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		quit, err := sh.exec(ctx, line)
		if err != nil {
			fmt.Fprintln(sh.out, " [!]", err)
		}
		if quit {
			return nil
		}
	}
}

// completer completes command names, domains and catalog titles.
func completer(a *app.App) *readline.PrefixCompleter {
	titles := func(domain string) readline.DynamicCompleteFunc {
		return func(string) []string {
			d, err := parseDomain(domain)
			if err != nil {
				return nil
			}
			return a.Catalog.Titles(d)
		}
	}
	domainItems := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for _, d := range []string{"playlist", "loop", "sfx"} {
			items = append(items, readline.PcItem(d, readline.PcItemDynamic(titles(d))))
		}
		return items
	}

	var items []readline.PrefixCompleterInterface
	for _, c := range commands {
		if c.domain {
			items = append(items, readline.PcItem(c.name, domainItems()...))
		} else {
			items = append(items, readline.PcItem(c.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
