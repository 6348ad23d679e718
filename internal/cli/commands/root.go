package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/config"
)

const version = "0.1.0"

var cfgFile string

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "reportctl",
	Short:   "Conversational report generation CLI",
	Version: version,
	Long: `A command-line client for the report generation backend.

Ask questions in natural language and receive reports as text, Markdown,
HTML, PDF or DOCX. Conversations are kept in independent sessions for the
lifetime of the chat.`,
	Example: `  # Configure backend and user
  $ reportctl config init

  # Start the interactive chat
  $ reportctl chat

  # Generate a single report
  $ reportctl report "monthly revenue by region" -f MARKDOWN

  # List sessions stored by the backend
  $ reportctl sessions --messages`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (default ~/.reportctl/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

// loadConfig loads the configuration selected by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, fmt.Errorf("config load failed")
	}
	return cfg, nil
}

// requireUser fails when no user id is configured
func requireUser(cfg *config.Config) error {
	if cfg.User.ID != "" {
		return nil
	}
	ui.PrintError("no user configured")
	fmt.Println("\nRun 'reportctl config init' or set REPORTCTL_USER_ID.")
	return fmt.Errorf("user required")
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("reportctl version %s\n", version)
}
