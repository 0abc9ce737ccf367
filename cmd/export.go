package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/akopylova/kabinet/internal/publish"
	"github.com/akopylova/kabinet/internal/render"
	"github.com/akopylova/kabinet/internal/store"
)

var exportWatch bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the public site into the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := store.New(cfg.DataDir)
		renderer, err := render.New()
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		exporter := &publish.Exporter{
			Store:     st,
			Renderer:  renderer,
			StaticDir: cfg.StaticDir,
			OutDir:    cfg.ExportDir,
			BaseURL:   cfg.BaseURL,
		}

		if err := exporter.Export(cmd.Context()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logrus.WithField("dir", cfg.ExportDir).Info("site exported")

		if !exportWatch {
			return nil
		}
		return watchAndExport(cmd.Context(), exporter)
	},
}

// watchAndExport re-runs the export whenever the data or static trees
// change, debounced so a burst of writes triggers one rebuild.
func watchAndExport(ctx context.Context, exporter *publish.Exporter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range []string{cfg.DataDir, cfg.StaticDir} {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}
	logrus.Info("watching for changes")

	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logrus.WithError(err).Warn("watch new directory")
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := exporter.Export(ctx); err != nil {
					logrus.WithError(err).Error("rebuild failed")
					return
				}
				logrus.Info("site rebuilt")
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("watcher error")
		}
	}
}

func init() {
	exportCmd.Flags().BoolVar(&exportWatch, "watch", false, "rebuild on content or asset changes")
	rootCmd.AddCommand(exportCmd)
}
