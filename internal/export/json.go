package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/chatsession/internal"
)

// JSONExporter exports sessions in the same JSON shape they are persisted in, pretty-printed
type JSONExporter struct{}

// Export exports a session to JSON format
func (e *JSONExporter) Export(session *internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	out := session.Clone()
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Messages == nil {
		out.Messages = []internal.Message{}
	}
	return enc.Encode(out)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
