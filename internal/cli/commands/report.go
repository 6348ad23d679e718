package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

const reportWidth = 100

var (
	reportFormat string
	reportOutput string
	reportStyle  string
)

// reportCmd generates a single report
var reportCmd = &cobra.Command{
	Use:   "report <query>",
	Short: "generate a single report",
	Long: `Send one query to the report backend and print or save the result.

Text, Markdown and HTML reports are rendered to the terminal. PDF and DOCX
reports are written to disk, using the file name suggested by the backend
unless --output is given.`,
	Example: `  # Markdown report printed to the terminal
  $ reportctl report "top 10 customers by revenue" -f MARKDOWN

  # PDF report saved to a file
  $ reportctl report "quarterly sales summary" -f PDF -o q3.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "report format: PDF, HTML, MARKDOWN, DOCX, TEXT (default from config)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "file or directory to write documents to")
	reportCmd.Flags().StringVar(&reportStyle, "style", "dark", "markdown style: dark, light, notty")

	reportCmd.SilenceUsage = true
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := cfg.DefaultFormat()
	if reportFormat != "" {
		if format, err = entity.ParseRequestFormat(reportFormat); err != nil {
			ui.PrintError("%v", err)
			return fmt.Errorf("invalid format")
		}
	}

	a, err := newApp(cfg, appOptions{})
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("initialization failed")
	}
	defer a.shutdown(context.Background())

	timeout := cfg.Backend.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	ui.PrintInfo("Generating %s report...", format)
	result := a.client.GenerateReport(ctx, domain.ReportRequest{
		Query:     strings.Join(args, " "),
		UserID:    cfg.User.ID,
		ProjectID: cfg.User.ProjectID,
		Format:    format,
	})

	switch r := result.(type) {
	case entity.ErrorResult:
		ui.PrintErrorBox("✗ Report Failed", r.Message)
		return fmt.Errorf("report failed: %s", r.Code)

	case entity.DocumentResult:
		path, err := writeDocument(reportOutput, r.FileName, r.Data)
		if err != nil {
			ui.PrintError("failed to save report: %v", err)
			return fmt.Errorf("save failed")
		}
		ui.PrintSuccessBox("✓ Report Saved", fmt.Sprintf("File:  %s\nType:  %s\nSize:  %s",
			path, strings.ToUpper(string(r.DocumentKind)), ui.FormatSize(len(r.Data))))
		return nil
	}

	renderer := ui.NewArtifactRenderer(ui.NewGlamourRenderer(reportStyle))
	fmt.Println()
	fmt.Println(renderer.RenderArtifact(a.resolver.Resolve(ctx, result), reportWidth))
	return nil
}

// writeDocument writes data to output. An empty output or an existing
// directory receives the suggested file name.
func writeDocument(output, suggested string, data []byte) (string, error) {
	name := filepath.Base(suggested)
	path := output
	switch {
	case output == "":
		path = name
	default:
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			path = filepath.Join(output, name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
