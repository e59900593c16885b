package main

import (
	"fmt"
	"os"

	"github.com/germanamz/genprompt/pkg/config"
	"github.com/germanamz/genprompt/pkg/expenses"
	"github.com/germanamz/genprompt/pkg/promptclient"
	"github.com/germanamz/genprompt/pkg/receiptapi"
	"github.com/germanamz/genprompt/pkg/receipts"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var (
		addr      string
		dbPath    string
		uploadDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the receipt upload service",
		Long: "Run an HTTP service that accepts receipt images, extracts the description,\n" +
			"date and amount with the model, categorizes the expense and stores it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, logger, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			applyServerFlags(&cfg.Server, addr, dbPath, uploadDir)

			db, err := expenses.OpenDB(cfg.Server.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := os.MkdirAll(cfg.Server.UploadDir, 0o750); err != nil {
				return fmt.Errorf("create upload dir: %w", err)
			}

			client, err := promptclient.New(ctx, cfg.Client, promptclient.WithLogger(logger))
			if err != nil {
				return err
			}

			h := receiptapi.NewHandler(
				receipts.NewExtractor(client),
				expenses.NewStore(db),
				cfg.Server.UploadDir,
				cfg.Server.MaxUpload,
				logger,
			)

			logger.Warn("receipt service starting",
				"addr", cfg.Server.ListenAddr,
				"db", cfg.Server.DBPath,
				"model", cfg.Client.Model,
				"api_key", config.MaskKey(cfg.Client.APIKey),
			)

			return receiptapi.Serve(ctx, cfg.Server.ListenAddr, receiptapi.NewServeMux(h, logger), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "", "listen address (env: GENPROMPT_LISTEN_ADDR, default: 127.0.0.1:8080)")
	flags.StringVar(&dbPath, "db", "", "SQLite database path (env: GENPROMPT_DB_PATH, default: genprompt.db)")
	flags.StringVar(&uploadDir, "upload-dir", "", "directory for uploaded images (env: GENPROMPT_UPLOAD_DIR, default: uploads)")

	return cmd
}

func applyServerFlags(s *config.ServerConfig, addr, dbPath, uploadDir string) {
	if addr != "" {
		s.ListenAddr = addr
	}
	if dbPath != "" {
		s.DBPath = dbPath
	}
	if uploadDir != "" {
		s.UploadDir = uploadDir
	}
}
