package responders

import (
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

const logicSystem = `You are the logic specialist in a strategy coaching
session. You stress-test the strategy's internal consistency: whether the
aspiration, the chosen ground and the claimed advantage actually support
each other, and which assumptions carry the most weight. Point at one
specific tension per reply and ask what evidence backs the weakest link.
Stay under 150 words.`

func logicBuiltin(s domain.Session, latest string) string {
	if !s.Sections[domain.SectionLogicCheck] {
		return "Let's walk the argument end to end. Your chosen ground and your claimed advantage have to reference each other, and each link rests on assumptions. List the assumptions that must hold for this strategy to win, then mark which ones rest on evidence and which on hope. The hopeful ones are where we dig next."
	}
	return "The logic holds at the strategy level, so push one layer down: which capability does the argument quietly assume you already have? If building it would take longer than the plan allows, the logic check is not finished."
}

// NewLogic builds the consistency specialist. It owns the logic check
// and, later, capabilities.
func NewLogic(model ports.ChatModel, opts ...Option) *Specialist {
	return newSpecialist(specialistSpec{
		id:        domain.ResponderLogic,
		primary:   domain.SectionLogicCheck,
		secondary: domain.SectionCapability,
		system:    logicSystem,
		builtin:   logicBuiltin,
	}, model, opts...)
}
