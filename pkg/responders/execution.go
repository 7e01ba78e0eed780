package responders

import (
	"fmt"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

const executionSystem = `You are the execution specialist in a strategy
coaching session. You turn strategic choices into concrete commitments:
first actions, owners, dates and the management cadence that keeps them
honest. Push for specifics whenever the user stays abstract. Stay under
150 words.`

func executionBuiltin(s domain.Session, latest string) string {
	if !s.Sections[domain.SectionActionPlan] {
		return fmt.Sprintf(
			"Strategy becomes real in the calendar. Take the nearest commitment behind %q and give it an owner and a date. Ninety-day horizons work well: near enough that people feel them, long enough that real work fits. Three such commitments and you have the spine of an action plan.",
			clip(latest, 60),
		)
	}
	return "The plan has its spine. What keeps it honest is the management rhythm around it: who reviews progress, how often, and what triggers a change of course. Decide that cadence now, while nothing is on fire."
}

// NewExecution builds the delivery specialist. It owns the action plan
// and, later, management systems.
func NewExecution(model ports.ChatModel, opts ...Option) *Specialist {
	return newSpecialist(specialistSpec{
		id:        domain.ResponderExecution,
		primary:   domain.SectionActionPlan,
		secondary: domain.SectionSystems,
		system:    executionSystem,
		builtin:   executionBuiltin,
	}, model, opts...)
}
