// Command nurvideo manages the gallery from a terminal. The session
// opened by login is kept on disk and picked up by later invocations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nurvideo/gallery/internal/app"
	"github.com/nurvideo/gallery/internal/config"
	"github.com/nurvideo/gallery/internal/lib/logger/slogpretty"
)

func main() {
	_ = godotenv.Load()

	// flag parsing stops at the command name
	cfg := config.MustLoad()

	log := slog.New(slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: slog.LevelWarn},
	}.NewPrettyHandler(os.Stderr))

	application, err := app.New(log, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{
		gate:   application.Gate,
		videos: application.Videos,
		in:     os.Stdin,
		out:    os.Stdout,
	}

	err = c.run(ctx, flag.Args())

	stop()
	application.Stop(log)

	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
