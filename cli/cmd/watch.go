package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/macro/log"
)

// watch calls run once, then again after each change to the file at path,
// until ctx is done. Bursts of changes closer together than interval
// trigger a single run. Runs never overlap.
func watch(
	ctx context.Context,
	path string,
	interval time.Duration,
	run func(context.Context),
) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("file", path))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("file", path))
	}
	defer w.Close()

	// Editors commonly save by renaming a new file over the old one, which
	// drops a watch on the file itself.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return ErrWatch.Wrap(err).With(slog.String("file", path))
	}

	log.DebugContext(ctx, "watch start",
		slog.String("file", abs),
		slog.Duration("debounce", interval))

	run(ctx)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "watch stop", slog.String("file", abs))

			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return ErrWatch.With(slog.String("file", abs))
			}

			if !changed(ev, abs) {
				continue
			}

			log.TraceContext(ctx, "source event",
				slog.String("file", ev.Name),
				slog.String("op", ev.Op.String()))

			if timer == nil {
				timer = time.NewTimer(interval)
			} else {
				timer.Reset(interval)
			}

			trigger = timer.C

		case <-trigger:
			trigger = nil

			log.InfoContext(ctx, "source changed", slog.String("file", abs))
			run(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return ErrWatch.With(slog.String("file", abs))
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// changed reports whether ev rewrote the file at path.
func changed(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}

	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}
