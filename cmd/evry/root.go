package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evry-ai/evry/internal/chat"
	"github.com/evry-ai/evry/internal/config"
	"github.com/evry-ai/evry/internal/logging"
	"github.com/evry-ai/evry/internal/providers"
	"github.com/evry-ai/evry/internal/search"
	"github.com/evry-ai/evry/internal/store"
	"github.com/evry-ai/evry/internal/tui"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "evry [prompt]",
	Short: "Streaming chat sessions in your terminal",
	Long: `evry is a terminal chat client. Responses stream in as they are
generated; finished conversations are titled and saved so you can come
back to them later.

An optional prompt argument is sent as the first message.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		initialPrompt := ""
		if len(args) == 1 {
			initialPrompt = args[0]
		}
		return runChat(initialPrompt)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging")
	rootCmd.AddCommand(sessionsCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDebug {
		cfg.Debug = true
	}
	return cfg, nil
}

// openStore builds the configured persistence backend. The returned path is
// non-empty only for the JSON backend, which supports file watching.
func openStore(cfg *config.Config) (chat.SessionStore, string, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "sessions.db"))
		if err != nil {
			return nil, "", nil, err
		}
		return s, "", func() { s.Close() }, nil
	case config.StoreJSON, "":
		s := store.NewJSONStore(cfg.DataDir)
		return s, s.Path(), func() {}, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func runChat(initialPrompt string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.DataDir, cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sessionStore, jsonPath, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	index, err := search.NewIndex()
	if err != nil {
		return err
	}
	defer index.Close()

	dir := chat.LoadDirectory(sessionStore, index, logger)

	llm, err := providers.NewClient(cfg)
	if err != nil {
		return err
	}

	events, hooks := tui.NewEventBridge()
	engine := chat.NewEngine(llm, dir, chat.Options{
		SendHistory: cfg.SendHistory,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, hooks, logger)

	if jsonPath != "" {
		watcher, err := store.WatchFile(jsonPath, logger, func() {
			logger.Info("session file changed outside this process, in-memory directory kept")
		})
		if err != nil {
			logger.Warn("session file watching disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	logger.Info("starting chat",
		zap.String("provider", cfg.Provider),
		zap.String("store", cfg.Store),
		zap.Int("saved_sessions", dir.Len()))

	return tui.Run(tui.New(engine, events, logger, initialPrompt))
}
