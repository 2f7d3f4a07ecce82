package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evry-ai/evry/internal/chat"
	"github.com/evry-ai/evry/internal/logging"
	"github.com/evry-ai/evry/internal/search"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect saved sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cleanup, err := openDirectory()
		if err != nil {
			return err
		}
		defer cleanup()

		sessions := dir.List()
		if len(sessions) == 0 {
			fmt.Println("No saved sessions.")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s  %-40s %d turns\n", s.ID, s.Title, len(s.Transcript))
		}
		return nil
	},
}

var sessionsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over saved sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cleanup, err := openDirectory()
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		results, err := dir.Search(args[0], limit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, s := range results {
			fmt.Printf("%s  %s\n", s.ID, s.Title)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved session's transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cleanup, err := openDirectory()
		if err != nil {
			return err
		}
		defer cleanup()

		s, ok := dir.Get(args[0])
		if !ok {
			return fmt.Errorf("no session with id %s", strconv.Quote(args[0]))
		}
		fmt.Printf("# %s\n\n", s.Title)
		for _, turn := range s.Transcript {
			switch turn.Role {
			case chat.RoleUser:
				fmt.Printf("You: %s\n", turn.Text)
			case chat.RoleAssistant:
				fmt.Printf("Assistant: %s\n", turn.Text)
			}
		}
		return nil
	},
}

func init() {
	sessionsSearchCmd.Flags().Int("limit", 10, "maximum number of results")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsSearchCmd, sessionsShowCmd)
}

// openDirectory loads the saved-session directory for read-only commands.
func openDirectory() (*chat.Directory, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.DataDir, cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	sessionStore, _, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}

	index, err := search.NewIndex()
	if err != nil {
		closeStore()
		logger.Sync()
		return nil, nil, err
	}

	dir := chat.LoadDirectory(sessionStore, index, logger)
	cleanup := func() {
		index.Close()
		closeStore()
		logger.Sync()
	}
	return dir, cleanup, nil
}
