package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/universalchat/hub-go/internal/config"
	"github.com/universalchat/hub-go/internal/database"
	"github.com/universalchat/hub-go/internal/docindex"
	apperrors "github.com/universalchat/hub-go/internal/errors"
	"github.com/universalchat/hub-go/internal/hub"
	"github.com/universalchat/hub-go/internal/memory"
)

// app carries everything a subcommand needs. The store is opened lazily so
// commands like completion/help never touch the database file.
type app struct {
	cfg    *config.Config
	db     *database.DB
	hub    *hub.Hub
	memory *memory.Store
	docs   *docindex.Indexer
}

func (a *app) open(ctx context.Context) error {
	db, err := database.Open(a.cfg.DatabasePath)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.DBPingTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("ping store: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return err
	}

	a.db = db
	a.hub = hub.New(db)
	a.memory = memory.NewStore(db, memory.NewHashEmbedder(config.EmbeddingDim))
	a.docs = docindex.NewIndexer(db)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	setLogLevel(cfg.LogLevel)

	a := &app{cfg: cfg}
	root := newRootCommand(a)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hub",
		Short:         "Multi-process mailbox and shared-context coordinator for AI agent CLIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.AddCommand(
		newRegisterCommand(a),
		newSessionsCommand(a),
		newSendCommand(a),
		newBroadcastCommand(a),
		newCheckCommand(a),
		newConversationCommand(a),
		newContextCommand(a),
		newCollabCommand(a),
		newMemoryCommand(a),
		newDocsCommand(a),
	)
	return cmd
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// printJSON writes the operation result snapshot to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportErr prints a structured error to stderr. A NOT_FOUND from a context
// lookup is a normal outcome and is handled by the caller, not here.
func reportErr(err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		log.Error().Str("code", string(appErr.Code)).Msg(appErr.Message)
		return err
	}
	log.Error().Err(err).Msg("operation failed")
	return err
}
