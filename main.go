package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/stewi1014/procview/config"
	"github.com/stewi1014/procview/programs"
	"github.com/stewi1014/procview/status"
)

var logLevel = new(slog.LevelVar)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

func init() {
	// GLFW and GL calls must come from the main thread.
	runtime.LockOSThread()
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: %s [flags] <mode> [path]\n\nmodes: %s\n  file takes the path of an image to post-process\n\nflags:\n",
		os.Args[0], strings.Join(programs.ModeNames(), ", "))
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "settings.json", "settings file; defaults are used if it does not exist")
	shaderDir := flag.String("shaders", "", "load shaders from `dir` instead of the embedded copies")
	exportPath := flag.String("export", "", "write the last frame to `path` (overrides settings)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(logger)

	mode, err := programs.ParseMode(flag.Args())
	if err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		flag.Usage()
		os.Exit(2)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fatal(fmt.Errorf("loading settings: %w", err))
	}
	if *shaderDir != "" {
		settings.Shaders.Dir = *shaderDir
	}
	if *exportPath != "" {
		settings.Export.Enabled = true
		settings.Export.Path = *exportPath
	}
	if *verbose {
		settings.Window.Debug = true
	}

	mainContext, mainQuit := context.WithCancelCause(context.Background())
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		mainQuit(errors.New("interrupted"))
	}()

	app := NewApplication(settings, mode, logger)
	if err := app.Run(mainContext); err != nil {
		fatal(err)
	}
}

// fatal logs err with whatever status detail it carries and exits. Deferred
// cleanups in the application have already run by the time it is called.
func fatal(err error) {
	logger.Error("procview failed", failureAttrs(err)...)
	os.Exit(1)
}

func failureAttrs(err error) []any {
	attrs := []any{"err", err}
	if kind, ok := status.KindOf(err); ok {
		attrs = append(attrs, "kind", kind.String(), "code", kind.Code())
	}
	var se *status.Error
	if errors.As(err, &se) {
		attrs = append(attrs, "op", se.Op, "location", se.Location())
		if se.Log != "" {
			attrs = append(attrs, "log", se.Log)
		}
	}
	return attrs
}
