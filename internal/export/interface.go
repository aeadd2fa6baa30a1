package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatsession/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(session *internal.ChatSession, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, &internal.ExportError{Format: format, Err: fmt.Errorf("unsupported format (supported: jsonl, md, yaml, json)")}
	}
}

// FileName returns the file name a session is exported to
func FileName(session *internal.ChatSession, e Exporter) string {
	return fmt.Sprintf("%s.%s", session.ID, e.Extension())
}
