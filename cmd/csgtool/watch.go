package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/bspcsg/pkg/export"
	"github.com/chazu/bspcsg/pkg/watch"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <script> -o <file>",
	Short: "Re-export a script every time it is saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (.stl or .glb)")
	watchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	rebuild := serialize(ctx, func(path string) {
		switch err := rebuildOnce(ctx, a, path, outputPath); {
		case errors.Is(err, errSkipped):
			log.WithField("script", path).Debug(err)
		case err != nil:
			log.WithError(err).Warn("rebuild failed")
		}
	})

	w, err := watch.New(0, log)
	if err != nil {
		return err
	}
	if err := w.Add(args[0], rebuild); err != nil {
		return err
	}
	rebuild(args[0])
	log.WithField("script", args[0]).Info("watching for changes")
	return w.Run(ctx)
}

// serialize returns a function that queues calls to fn on a single worker
// goroutine, which exits when ctx is done. Calls made while one is already
// queued are dropped; the queued call picks up the newer file contents.
func serialize(ctx context.Context, fn func(string)) func(string) {
	queue := make(chan string, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-queue:
				fn(path)
			}
		}
	}()
	return func(path string) {
		select {
		case queue <- path:
		default:
		}
	}
}

// errSkipped marks a rebuild that a newer one replaced.
var errSkipped = errors.New("superseded by a newer save")

// rebuildOnce evaluates script and exports it to out. A rebuild overtaken by
// a newer one leaves out untouched.
func rebuildOnce(ctx context.Context, a *App, script, out string) error {
	res, err := evaluateFile(ctx, a, script, os.Stderr)
	if err != nil {
		return err
	}
	if res.Superseded {
		return errSkipped
	}
	if err := export.Save(out, res.Meshes); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": out, "parts": len(res.Meshes)}).Info("exported")
	return nil
}
