package responders

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/cairnlabs/cairn/pkg/ports"
)

var staticBank = []string{
	"That is a solid starting point. %s The sharper you can state it, the easier every later choice becomes.",
	"I hear a real aspiration in that. %s Try writing it down as a single sentence and see if it still holds.",
	"Good. %s Keep the language concrete; abstract strategy statements hide the hard choices.",
	"Let us build on that. %s Once this is settled the rest of the brief falls into place faster.",
	"Worth pausing on. %s If a skeptical colleague read this, what would they push back on first?",
}

// StaticModel is an offline ChatModel for development and tests. With a
// scripted reply list it plays the replies back in order and then repeats
// the last one; without one it phrases a deterministic coaching reply
// derived from the prompt. Safe for concurrent use.
type StaticModel struct {
	mu      sync.Mutex
	replies []string
	next    int
}

var _ ports.ChatModel = (*StaticModel)(nil)

// NewStaticModel builds a static model. Pass replies to script the exact
// outputs, or none for the derived default phrasing.
func NewStaticModel(replies ...string) *StaticModel {
	return &StaticModel{replies: replies}
}

// Complete returns the next scripted reply, or a bank sentence chosen by a
// stable hash of the prompt.
func (m *StaticModel) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) > 0 {
		reply := m.replies[m.next]
		if m.next < len(m.replies)-1 {
			m.next++
		}
		return reply, nil
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))
	line := staticBank[h.Sum32()%uint32(len(staticBank))]

	subject := "You said: \"" + clip(promptSubject(prompt), 90) + "\"."
	return strings.Replace(line, "%s", subject, 1), nil
}

// CompleteWithSystem ignores the system instruction; static phrasing does
// not vary by persona.
func (m *StaticModel) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.Complete(ctx, userPrompt)
}

// promptSubject pulls the text a specialist prompt asks the model to
// respond to, falling back to the final line.
func promptSubject(prompt string) string {
	if i := strings.LastIndex(prompt, "Respond to: "); i >= 0 {
		return strings.TrimSpace(prompt[i+len("Respond to: "):])
	}
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
