package loader

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// ReportBatch is a list of report queries loaded from a YAML file
type ReportBatch struct {
	// Name labels the session the batch runs in
	Name string `json:"name,omitempty"`
	// Format is the default format of every query
	Format string `json:"format,omitempty"`
	// OutputDir receives PDF and DOCX reports
	OutputDir string       `json:"outputDir,omitempty"`
	Queries   []BatchQuery `json:"queries"`
}

// BatchQuery is one query of a batch
type BatchQuery struct {
	Query  string `json:"query"`
	Format string `json:"format,omitempty"`
	// FileName overrides the file name suggested by the backend
	FileName string `json:"fileName,omitempty"`
}

// LoadFromFile loads and validates a batch file. Unknown fields are rejected.
func LoadFromFile(path string) (*ReportBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var batch ReportBatch
	if err := yaml.UnmarshalStrict(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if err := batch.Validate(); err != nil {
		return nil, err
	}
	return &batch, nil
}

// Validate checks that every query is non-blank and every format is known
func (b *ReportBatch) Validate() error {
	if len(b.Queries) == 0 {
		return fmt.Errorf("'queries' is required and must not be empty")
	}
	if b.Format != "" {
		if _, err := entity.ParseRequestFormat(b.Format); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}
	for i, q := range b.Queries {
		if strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("queries[%d].query is required", i)
		}
		if q.Format != "" {
			if _, err := entity.ParseRequestFormat(q.Format); err != nil {
				return fmt.Errorf("queries[%d].format: %w", i, err)
			}
		}
	}
	return nil
}

// FormatOf returns the format of q: its own, else the batch default, else fallback
func (b *ReportBatch) FormatOf(q BatchQuery, fallback entity.RequestFormat) entity.RequestFormat {
	for _, candidate := range []string{q.Format, b.Format} {
		if f, err := entity.ParseRequestFormat(candidate); err == nil {
			return f
		}
	}
	return fallback
}

// Dir returns the output directory, defaulting to the working directory
func (b *ReportBatch) Dir() string {
	if b.OutputDir == "" {
		return "."
	}
	return b.OutputDir
}
