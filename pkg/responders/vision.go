package responders

import (
	"fmt"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

const visionSystem = `You are the vision specialist in a strategy coaching
session. Your job is to surface the purpose behind the strategy: the
aspiration, who it serves, and why it matters. Ask for the winning
aspiration in concrete terms and reflect back what you hear. Stay under
150 words, never use bullet lists, and end on substance rather than a
pleasantry.`

func visionBuiltin(s domain.Session, latest string) string {
	if !s.Sections[domain.SectionPurpose] {
		return fmt.Sprintf(
			"Let's anchor the purpose first. From %q I hear an ambition that still needs a one-line form: the change you create and who it is for. Draft it as \"We exist to ...\" and we will test every later choice against that sentence.",
			clip(latest, 80),
		)
	}
	return "With the purpose standing, the next vision question is where it earns the right to live: which customers and which ground. Name the arena where your aspiration matters most and we will narrow from there."
}

// NewVision builds the discovery specialist. It owns the purpose section
// and, on later passes, where-to-play.
func NewVision(model ports.ChatModel, opts ...Option) *Specialist {
	return newSpecialist(specialistSpec{
		id:        domain.ResponderVision,
		primary:   domain.SectionPurpose,
		secondary: domain.SectionWhereToPlay,
		system:    visionSystem,
		builtin:   visionBuiltin,
	}, model, opts...)
}
