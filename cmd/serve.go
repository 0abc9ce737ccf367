package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/akopylova/kabinet/internal/database"
	"github.com/akopylova/kabinet/internal/publish"
	"github.com/akopylova/kabinet/internal/render"
	"github.com/akopylova/kabinet/internal/server"
	"github.com/akopylova/kabinet/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin panel and public site",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		st := store.New(cfg.DataDir)
		renderer, err := render.New()
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}

		deployer := &publish.Deployer{
			Exporter: &publish.Exporter{
				Store:     st,
				Renderer:  renderer,
				StaticDir: cfg.StaticDir,
				OutDir:    cfg.ExportDir,
				BaseURL:   cfg.BaseURL,
			},
			DB:            db,
			RepoDir:       cfg.RepoDir,
			Remote:        cfg.GitRemote,
			Branch:        cfg.GitBranch,
			ExportTimeout: time.Duration(cfg.ExportTimeout) * time.Second,
			PushTimeout:   time.Duration(cfg.PushTimeout) * time.Second,
		}

		srv, err := server.New(cfg, st, db, deployer)
		if err != nil {
			return fmt.Errorf("create server: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"data":   cfg.DataDir,
			"static": cfg.StaticDir,
		}).Info("serving")
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
