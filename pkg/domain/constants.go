package domain

// Baseline section keys of the Completeness Map. The map may grow ad hoc
// keys at runtime; these are the known initial subset, not a closed schema.
const (
	SectionPurpose     = "purpose"
	SectionWhereToPlay = "where_to_play"
	SectionHowToWin    = "how_to_win"
	SectionCapability  = "capabilities"
	SectionSystems     = "systems"
	SectionCaseStudies = "case_studies"
	SectionLogicCheck  = "logic_check"
	SectionActionPlan  = "action_plan"
)

// Responder identifiers. The dispatch scorer only ever selects one of these
// (or the synthetic synthesize/end targets).
const (
	ResponderVision    = "vision"
	ResponderAnalogy   = "analogy"
	ResponderLogic     = "logic"
	ResponderExecution = "execution"
	ResponderProgress  = "progress"
)

// BaselineSections returns the eight baseline section keys in document order.
func BaselineSections() []string {
	return []string{
		SectionPurpose,
		SectionWhereToPlay,
		SectionHowToWin,
		SectionCapability,
		SectionSystems,
		SectionCaseStudies,
		SectionLogicCheck,
		SectionActionPlan,
	}
}

// SectionTitle maps a section key to its human-readable document heading.
// Unknown keys fall back to the key itself.
func SectionTitle(key string) string {
	switch key {
	case SectionPurpose:
		return "Purpose"
	case SectionWhereToPlay:
		return "Where to Play"
	case SectionHowToWin:
		return "How to Win"
	case SectionCapability:
		return "Capabilities"
	case SectionSystems:
		return "Management Systems"
	case SectionCaseStudies:
		return "Case Studies"
	case SectionLogicCheck:
		return "Logic Check"
	case SectionActionPlan:
		return "Action Plan"
	}
	return key
}
