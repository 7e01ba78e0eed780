package responders

import (
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

const analogySystem = `You are the analogy specialist in a strategy coaching
session. You ground abstract strategy in comparable cases: how companies in
adjacent situations made similar choices, what worked, and where the
analogies break down. Offer one or two concrete parallels per reply and
always name where the user's situation differs. Stay under 150 words.`

func analogyBuiltin(s domain.Session, latest string) string {
	if !s.Sections[domain.SectionCaseStudies] {
		return "Comparable cases will sharpen this. Think of a company that faced the same fork: most category leaders narrowed where to play before they scaled, and the ones that skipped that step paid for it later. Pick two such paths, map your situation against them, and note exactly where yours differs. That difference is usually where your real strategy lives."
	}
	return "You have the parallels on the table. Now use them the other way: the case where the analogy breaks tells you which advantage you cannot borrow and must build. That is the how-to-win material."
}

// NewAnalogy builds the comparison specialist. It owns case studies and,
// later, how-to-win.
func NewAnalogy(model ports.ChatModel, opts ...Option) *Specialist {
	return newSpecialist(specialistSpec{
		id:        domain.ResponderAnalogy,
		primary:   domain.SectionCaseStudies,
		secondary: domain.SectionHowToWin,
		system:    analogySystem,
		builtin:   analogyBuiltin,
	}, model, opts...)
}
