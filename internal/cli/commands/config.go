package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/config"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// configCmd groups configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "manage reportctl configuration",
	Long: `Create or inspect the reportctl configuration file.

Every key can also be set through the environment with the REPORTCTL_
prefix, e.g. REPORTCTL_BACKEND_BASE_URL or REPORTCTL_USER_ID. A .env file in
the working directory is loaded first.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "create the configuration interactively",
	Example: `  $ reportctl config init
  $ reportctl config init -c ./reportctl.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.SilenceUsage = true
	configShowCmd.SilenceUsage = true
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formats := make([]string, 0, len(entity.RequestFormats))
	for _, f := range entity.RequestFormats {
		formats = append(formats, string(f))
	}

	answers := struct {
		BaseURL   string
		UserID    string
		ProjectID string
		Format    string
		Timeout   string
	}{}

	questions := []*survey.Question{
		{
			Name:     "baseurl",
			Prompt:   &survey.Input{Message: "Backend URL:", Default: cfg.Backend.BaseURL},
			Validate: survey.ComposeValidators(survey.Required, validateURL),
		},
		{
			Name:     "userid",
			Prompt:   &survey.Input{Message: "User ID:", Default: cfg.User.ID},
			Validate: survey.Required,
		},
		{
			Name:   "projectid",
			Prompt: &survey.Input{Message: "Project ID:", Default: cfg.User.ProjectID},
		},
		{
			Name:   "format",
			Prompt: &survey.Select{Message: "Default report format:", Options: formats, Default: string(cfg.DefaultFormat())},
		},
		{
			Name:     "timeout",
			Prompt:   &survey.Input{Message: "Request timeout:", Default: cfg.Backend.Timeout.String()},
			Validate: validateDuration,
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		ui.PrintError("failed to read input: %v", err)
		return fmt.Errorf("input failed")
	}

	cfg.Backend.BaseURL = answers.BaseURL
	cfg.User.ID = answers.UserID
	cfg.User.ProjectID = answers.ProjectID
	cfg.Report.DefaultFormat = answers.Format
	cfg.Backend.Timeout, _ = time.ParseDuration(answers.Timeout)

	if err := cfg.Validate(); err != nil {
		ui.PrintError("invalid configuration: %v", err)
		return fmt.Errorf("validation failed")
	}

	path := cfgFile
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			ui.PrintError("%v", err)
			return fmt.Errorf("config save failed")
		}
	}
	if err := cfg.Save(path); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	ui.PrintSuccessBox("✓ Configuration Saved", fmt.Sprintf(`Backend:  %s
User ID:  %s
Format:   %s
Saved to: %s`, cfg.Backend.BaseURL, cfg.User.ID, cfg.Report.DefaultFormat, path))

	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  reportctl chat              # Interactive chat")
	ui.PrintBold("  reportctl report <query>    # One-shot report")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ui.PrintBanner("reportctl configuration")
	ui.PrintKeyValue("backend.base_url", cfg.Backend.BaseURL)
	ui.PrintKeyValue("backend.timeout", cfg.Backend.Timeout)
	ui.PrintKeyValue("user.id", orNone(cfg.User.ID))
	ui.PrintKeyValue("user.project_id", orNone(cfg.User.ProjectID))
	ui.PrintKeyValue("report.default_format", cfg.DefaultFormat())
	ui.PrintKeyValue("blob.backend", cfg.Blob.Backend)
	if cfg.Blob.Backend == "s3" {
		ui.PrintKeyValue("blob.s3.endpoint", cfg.Blob.S3.Endpoint)
		ui.PrintKeyValue("blob.s3.bucket", cfg.Blob.S3.Bucket)
	} else {
		ui.PrintKeyValue("blob.serve", cfg.Blob.Serve)
		ui.PrintKeyValue("blob.listen_addr", cfg.Blob.ListenAddr)
	}
	ui.PrintKeyValue("log.level", cfg.Log.Level)
	ui.PrintKeyValue("log.file_path", cfg.Log.FilePath)
	ui.PrintKeyValue("session.hydrate", cfg.Session.Hydrate)
	return nil
}

func validateURL(ans interface{}) error {
	s, _ := ans.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}

func validateDuration(ans interface{}) error {
	s, _ := ans.(string)
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration such as 60s or 2m")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
