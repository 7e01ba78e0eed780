package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines
// communication, for hosts that drive the coach programmatically.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
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

// Output emits the responder turns as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, turns []domain.Turn) error {
	out := make([]domain.Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Role == domain.RoleResponder {
			out = append(out, turn)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return h.Encoder.Encode(out)
}

// Input reads one line. It accepts a bare string, a JSON-quoted string,
// or a {"message": "..."} object.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	text = strings.TrimSpace(text)

	var quoted string
	if err := json.Unmarshal([]byte(text), &quoted); err == nil {
		return quoted, nil
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Message != "" {
		return envelope.Message, nil
	}

	return text, nil
}

// SystemOutput emits loop notices as {"system": "..."} lines so hosts can
// tell them apart from conversation turns.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
