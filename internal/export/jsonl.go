package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/chatsession/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	SessionID  string   `json:"session_id"`
	ID         string   `json:"id"`
	Sender     string   `json:"sender"`
	Kind       string   `json:"kind"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range session.Messages {
		line := jsonlLine{
			SessionID: session.ID,
			ID:        msg.ID,
			Sender:    string(msg.Sender),
			Kind:      string(msg.EffectiveKind()),
			Content:   msg.Content,
		}
		if !msg.Timestamp.IsZero() {
			line.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		if msg.Metadata != nil && msg.Sender == internal.SenderAssistant {
			confidence := msg.Metadata.Confidence
			line.Confidence = &confidence
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
