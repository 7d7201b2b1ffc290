// Package export renders pipeline results for files, terminals and downloads.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mgpai22/shortscribe/internal/pipeline"
)

const NoTranscriptPlaceholder = "No transcript available."

// represents supported export formats
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// interface for writing results
type Writer interface {
	Write(w io.Writer, results []pipeline.Result) error
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatText, "":
		return TextWriter{}, nil
	case FormatJSON:
		return JSONWriter{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// FormatFromExtension picks a format from an output path. Unknown
// extensions fall back to text.
func FormatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// TextWriter renders one "Transcript N:" block per result.
type TextWriter struct{}

func (TextWriter) Write(w io.Writer, results []pipeline.Result) error {
	_, err := io.WriteString(w, RenderText(results))
	return err
}

func RenderText(results []pipeline.Result) string {
	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "Transcript %d:\n", r.Index)
		if text, ok := r.Transcript(); ok {
			sb.WriteString(text)
		} else {
			sb.WriteString(NoTranscriptPlaceholder)
		}
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()) + "\n"
}

type JSONWriter struct {
	Indent string
}

func (jw JSONWriter) Write(w io.Writer, results []pipeline.Result) error {
	if results == nil {
		results = []pipeline.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", jw.Indent)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
