package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/mansidw/aakar-cli/internal/cli/loader"
	"github.com/mansidw/aakar-cli/internal/cli/ui"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

var (
	runFile string
	runYes  bool
)

// runCmd runs a batch of report queries from a YAML file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "generate a batch of reports from a YAML file",
	Long: `Load a batch file and send each query, in order, in one session.

PDF and DOCX reports are written to the batch's outputDir; other reports
are printed.

Batch file format:
  name: weekly
  format: MARKDOWN        # default format for every query
  outputDir: ./reports
  queries:
    - query: revenue by region
      format: PDF
      fileName: revenue.pdf
    - query: churn last month`,
	Example: `  # Run with confirmation
  $ reportctl run -f weekly.yaml

  # Run without prompting
  $ reportctl run -f weekly.yaml --yes`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "YAML batch file (required)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip confirmation")
	_ = runCmd.MarkFlagRequired("file")

	runCmd.SilenceUsage = true
}

func runBatch(cmd *cobra.Command, args []string) error {
	ui.PrintInfo("Loading batch from file: %s", runFile)
	batch, err := loader.LoadFromFile(runFile)
	if err != nil {
		ui.PrintError("failed to load file: %v", err)
		return fmt.Errorf("file load failed")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireUser(cfg); err != nil {
		return err
	}

	// Display the plan
	fmt.Println()
	ui.PrintKeyValue("Queries", fmt.Sprintf("%d", len(batch.Queries)))
	ui.PrintKeyValue("Output", batch.Dir())
	for i, q := range batch.Queries {
		fmt.Printf("  %d. [%s] %s\n", i+1, batch.FormatOf(q, cfg.DefaultFormat()), q.Query)
	}
	fmt.Println()

	if !runYes {
		confirm := false
		confirmPrompt := &survey.Confirm{
			Message: "Generate these reports?",
			Default: true,
		}
		if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
			return fmt.Errorf("confirmation cancelled")
		}
		if !confirm {
			ui.PrintInfo("Cancelled")
			return nil
		}
	}

	a, err := newApp(cfg, appOptions{})
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("initialization failed")
	}
	defer a.shutdown(context.Background())

	ctx := cmd.Context()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.ctrl.Close(closeCtx)
	}()

	a.ctrl.CreateSession()
	renderer := ui.NewArtifactRenderer(ui.NewGlamourRenderer("dark"))

	failed := 0
	for i, q := range batch.Queries {
		format := batch.FormatOf(q, cfg.DefaultFormat())
		ui.PrintInfo("(%d/%d) %s", i+1, len(batch.Queries), q.Query)

		out, err := a.ctrl.SendMessage(ctx, q.Query, format)
		if err != nil {
			ui.PrintError("%v", err)
			failed++
			continue
		}

		switch art := out.Reply.Artifact.(type) {
		case entity.ErrorArtifact:
			ui.PrintError("%s", art.Message)
			failed++
		case entity.DocumentArtifact:
			path, err := a.saveArtifact(art, batch.Dir(), q.FileName)
			if err != nil {
				ui.PrintError("failed to save report: %v", err)
				failed++
				continue
			}
			ui.PrintSuccess("Saved %s (%s)", path, ui.FormatSize(art.Size))
		default:
			fmt.Println(renderer.RenderArtifact(art, reportWidth))
			fmt.Println()
		}
	}

	fmt.Println()
	if failed > 0 {
		ui.PrintWarning("%d of %d report(s) failed", failed, len(batch.Queries))
		return fmt.Errorf("%d report(s) failed", failed)
	}
	ui.PrintSuccess("%d report(s) generated", len(batch.Queries))
	return nil
}

// saveArtifact writes a document held by the in-memory registry to dir.
// Documents stored remotely are only linked.
func (a *app) saveArtifact(doc entity.DocumentArtifact, dir, fileName string) (string, error) {
	if a.registry == nil {
		return string(doc.Handle), nil
	}
	blob, err := a.registry.OpenHandle(doc.Handle)
	if err != nil {
		return "", err
	}

	name := doc.FileName
	if strings.TrimSpace(fileName) != "" {
		name = fileName
	}
	return writeDocument(filepath.Join(dir, filepath.Base(name)), name, blob.Data)
}
