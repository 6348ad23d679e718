package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/domain"
)

var (
	sessionsUser     string
	sessionsMessages bool
)

// sessionsCmd lists sessions stored by the backend
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "list sessions stored by the backend",
	Long: `List the chat sessions the backend has stored for a user, as a tree.

With --messages each session also shows a one-line preview of every message.`,
	Example: `  # Sessions of the configured user
  $ reportctl sessions

  # Include message previews
  $ reportctl sessions --messages

  # Another user
  $ reportctl sessions -u 42`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().StringVarP(&sessionsUser, "user", "u", "", "user id (default from config)")
	sessionsCmd.Flags().BoolVarP(&sessionsMessages, "messages", "m", false, "include message previews")

	sessionsCmd.SilenceUsage = true
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sessionsUser != "" {
		cfg.User.ID = sessionsUser
	}
	if err := requireUser(cfg); err != nil {
		return err
	}

	a, err := newApp(cfg, appOptions{})
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("initialization failed")
	}
	defer a.shutdown(context.Background())

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	ui.PrintInfo("Fetching sessions for user '%s'...", cfg.User.ID)
	sessions, err := a.client.ListSessions(ctx, cfg.User.ID)
	if err != nil {
		ui.PrintError("failed to list sessions: %v", err)
		return fmt.Errorf("list operation failed")
	}

	var messages map[string][]domain.RemoteMessage
	if sessionsMessages {
		if messages, err = fetchMessages(ctx, a.client, sessions); err != nil {
			ui.PrintError("failed to fetch messages: %v", err)
			return fmt.Errorf("list operation failed")
		}
	}

	fmt.Println()
	fmt.Println(ui.RenderSessionTree(cfg.User.ID, sessions, messages))
	return nil
}

// fetchMessages loads the messages of every session with bounded concurrency
func fetchMessages(ctx context.Context, source domain.SessionSource, sessions []domain.RemoteSession) (map[string][]domain.RemoteMessage, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]domain.RemoteMessage, len(sessions))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, s := range sessions {
		g.Go(func() error {
			msgs, err := source.GetSessionMessages(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("session %s: %w", s.ID, err)
			}
			mu.Lock()
			out[s.ID] = msgs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
