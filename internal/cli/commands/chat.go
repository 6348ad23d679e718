package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mansidw/aakar-cli/internal/cli/tui"
	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

var (
	chatFormat  string
	chatSaveDir string
	chatHydrate bool
	chatStyle   string
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start the interactive report chat",
	Long: `Start an interactive chat with the report backend.

Features:
  • Multiple independent sessions in a sidebar
  • Reports rendered in place (text, Markdown, HTML) or as document links (PDF, DOCX)
  • Switching sessions never cancels a report that is being generated

Logs are written to the configured log file so the screen stays clean.`,
	Example: `  # Start interactive chat
  $ reportctl chat

  # Ask for Markdown reports and load sessions stored by the backend
  $ reportctl chat -f MARKDOWN --hydrate

  # Keyboard controls:
  • Enter send, Tab change format
  • Ctrl+N new session, Ctrl+X delete session, Ctrl+↑/↓ switch
  • Ctrl+S save the latest document, Esc quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatFormat, "format", "f", "", "initial report format: PDF, HTML, MARKDOWN, DOCX, TEXT (default from config)")
	chatCmd.Flags().StringVar(&chatSaveDir, "save-dir", ".", "directory documents are saved to with Ctrl+S")
	chatCmd.Flags().BoolVar(&chatHydrate, "hydrate", false, "load sessions stored by the backend on start")
	chatCmd.Flags().StringVar(&chatStyle, "style", "dark", "markdown style: dark, light, notty")

	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'reportctl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireUser(cfg); err != nil {
		return err
	}

	format := cfg.DefaultFormat()
	if chatFormat != "" {
		if format, err = entity.ParseRequestFormat(chatFormat); err != nil {
			ui.PrintError("%v", err)
			return fmt.Errorf("invalid format")
		}
	}

	// the TUI owns the terminal
	cfg.Log.Output = "file"

	a, err := newApp(cfg, appOptions{serveBlobs: true})
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("initialization failed")
	}
	a.start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	opts := tui.Options{
		Format:   format,
		Renderer: ui.NewArtifactRenderer(ui.NewGlamourRenderer(chatStyle)),
		SaveDir:  chatSaveDir,
		Hydrate:  chatHydrate || cfg.Session.Hydrate,
	}
	if a.registry != nil {
		opts.Opener = a.registry
	}

	program := tui.NewChatProgram(cmd.Context(), a.ctrl, opts)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
