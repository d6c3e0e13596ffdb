package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/commitgenie/internal/cache"
	"github.com/dshills/commitgenie/internal/review"
	"github.com/dshills/commitgenie/internal/usage"
)

// Report is everything a command may render. Nil sections are omitted.
type Report struct {
	Review        *review.Result    `json:"review,omitempty"`
	CommitMessage string            `json:"commitMessage,omitempty"`
	Current       *usage.Stats      `json:"current,omitempty"`
	Historical    *usage.Historical `json:"historical,omitempty"`
	Cache         *cache.Stats      `json:"cache,omitempty"`
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "markdown"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when it is empty.
func WriteReport(report *Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}
