package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/localharvest/localharvest/internal/auth"
	"github.com/localharvest/localharvest/internal/config"
	"github.com/localharvest/localharvest/internal/db"
	"github.com/localharvest/localharvest/internal/listing"
	"github.com/localharvest/localharvest/internal/logging"
	"github.com/localharvest/localharvest/internal/rowstore"
	"github.com/localharvest/localharvest/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		port    int
		memory  bool
		sheetID string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: "Start the localharvest HTTP server. Listings are stored in SQLite by default; " +
			"--memory keeps them in process memory only, and --sheet stores them in a Google Sheets spreadsheet.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, memory, sheetID, cmd.Flags().Changed("port"))
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep listings in memory (lost on restart)")
	cmd.Flags().StringVar(&sheetID, "sheet", "", "Google Sheets spreadsheet ID to store listings in")

	return cmd
}

func runServe(ctx context.Context, port int, memory bool, sheetID string, portSet bool) error {
	// A .env file is optional; real env vars win either way
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if portSet {
		cfg.Port = port
	}

	logging.Setup(cfg.DevMode)

	dbPath := flagDB
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		dbPath, err = db.DefaultPath()
		if err != nil {
			return err
		}
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			slog.Error("closing database", "err", cerr)
		}
	}()

	var store listing.Store
	switch {
	case memory && sheetID != "":
		return fmt.Errorf("--memory and --sheet are mutually exclusive")
	case memory:
		slog.Info("using in-memory listing store")
		store = listing.NewMemoryStore()
	case sheetID != "":
		if cfg.SheetsCredentials == "" {
			return fmt.Errorf("--sheet requires LH_SHEETS_CREDENTIALS to be set")
		}
		backend, serr := rowstore.NewSheets(ctx, cfg.SheetsCredentials, sheetID, cfg.SheetName)
		if serr != nil {
			return fmt.Errorf("connecting to spreadsheet: %w", serr)
		}
		slog.Info("using spreadsheet listing store", "sheet", cfg.SheetName)
		store = rowstore.NewStore(backend)
	default:
		slog.Info("using SQLite listing store", "path", dbPath)
		store = listing.NewRepository(database)
	}

	authCfg := auth.Config{
		AdminEmail: cfg.AdminEmail,
		SMTPHost:   cfg.SMTPHost,
		SMTPPort:   cfg.SMTPPort,
		SMTPUser:   cfg.SMTPUser,
		SMTPPass:   cfg.SMTPPass,
		SMTPFrom:   cfg.SMTPFrom,
		DevMode:    cfg.DevMode,
		BaseURL:    cfg.BaseURL,
	}

	srv, err := web.NewServer(database, store, authCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.ListenAndServe(cfg.Port)
}
