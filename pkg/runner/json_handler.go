package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/spotlist/pkg/domain"
)

// JSONHandler implements IOHandler for structured JSON-Lines communication.
// Each output is one object with a "type" of "view" or "system".
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// JSONMessage is one line written by the JSONHandler.
type JSONMessage struct {
	Type    string       `json:"type"`
	View    *domain.View `json:"view,omitempty"`
	Message string       `json:"message,omitempty"`
}

// JSONInput is the structured form of an input line.
// Either Action ("next", "back", "locate", ...) or Field/Value is set.
type JSONInput struct {
	Action string `json:"action,omitempty"`
	Field  string `json:"field,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, view domain.View) error {
	return h.Encoder.Encode(JSONMessage{Type: "view", View: &view})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(JSONMessage{Type: "system", Message: msg})
}

// Input reads one line. It accepts a JSON string, a JSONInput object or raw text,
// and normalises all of them to the line grammar of ParseIntent.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var line string
	switch {
	case strings.HasPrefix(text, "{"):
		var in JSONInput
		if err := json.Unmarshal([]byte(text), &in); err != nil {
			return "", fmt.Errorf("decoding input: %w", err)
		}
		line = in.line()
	case strings.HasPrefix(text, `"`):
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			line = text
		}
	default:
		line = text
	}

	return SanitizeInput(line)
}

func (in JSONInput) line() string {
	if in.Field != "" {
		if in.Value == nil {
			return in.Field + "="
		}
		return in.Field + "=" + fmt.Sprint(in.Value)
	}
	if in.Value != nil {
		return in.Action + " " + fmt.Sprint(in.Value)
	}
	return in.Action
}
