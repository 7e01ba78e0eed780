package domain_test

import (
	"testing"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_Baseline(t *testing.T) {
	s := domain.NewSession("s1")

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, domain.PhaseDiscovery, s.Phase)
	assert.Len(t, s.Sections, 8)
	for key, done := range s.Sections {
		assert.False(t, done, "section %s should start open", key)
	}
	assert.InDelta(t, 0.0, s.Completeness(), 0.0001)
}

func TestSession_CompletenessExact(t *testing.T) {
	s := domain.NewSession("s1")

	// 3 of 8 -> 37.5 exactly.
	s.SetSection(domain.SectionPurpose, true)
	s.SetSection(domain.SectionCaseStudies, true)
	s.SetSection(domain.SectionLogicCheck, true)
	assert.InDelta(t, 37.5, s.Completeness(), 0.0001)

	// All eight true -> exactly 100.
	for _, key := range domain.BaselineSections() {
		s.SetSection(key, true)
	}
	assert.InDelta(t, 100.0, s.Completeness(), 0.0001)
}

func TestSession_CompletenessIdempotent(t *testing.T) {
	s := domain.NewSession("s1")
	s.SetSection(domain.SectionPurpose, true)

	first := s.Completeness()
	second := s.Completeness()
	assert.Equal(t, first, second)
}

func TestSession_AdHocKeysCountTowardDenominator(t *testing.T) {
	s := domain.NewSession("s1")
	for _, key := range domain.BaselineSections() {
		s.SetSection(key, true)
	}
	require.InDelta(t, 100.0, s.Completeness(), 0.0001)

	// A ninth, unknown key dilutes the percentage: 8/9.
	s.SetSection("regulatory_review", false)
	assert.InDelta(t, 100.0*8.0/9.0, s.Completeness(), 0.0001)
}

func TestSession_IncompleteSectionsDeterministic(t *testing.T) {
	s := domain.NewSession("s1")
	s.SetSection(domain.SectionPurpose, true)
	s.SetSection("zeta_extra", false)
	s.SetSection("alpha_extra", false)

	got := s.IncompleteSections()
	// Baseline order first, ad hoc keys sorted after.
	require.Len(t, got, 9)
	assert.Equal(t, domain.SectionWhereToPlay, got[0])
	assert.Equal(t, "alpha_extra", got[7])
	assert.Equal(t, "zeta_extra", got[8])
}

func TestSession_AppendTurnIsAppendOnly(t *testing.T) {
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "hello", "")
	s.AppendTurn(domain.RoleResponder, "welcome", domain.ResponderVision)

	require.Len(t, s.Turns, 2)
	assert.Equal(t, domain.RoleUser, s.Turns[0].Role)
	assert.Equal(t, "hello", s.Turns[0].Content)
	assert.Equal(t, domain.ResponderVision, s.Turns[1].Agent)
	assert.Equal(t, 1, s.TurnIndex())
}

func TestSession_LastUserTurnsWindow(t *testing.T) {
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "one", "")
	s.AppendTurn(domain.RoleResponder, "r1", domain.ResponderVision)
	s.AppendTurn(domain.RoleUser, "two", "")
	s.AppendTurn(domain.RoleUser, "three", "")
	s.AppendTurn(domain.RoleUser, "four", "")

	window := s.LastUserTurns(3)
	require.Len(t, window, 3)
	assert.Equal(t, "two", window[0].Content)
	assert.Equal(t, "four", window[2].Content)
	assert.Equal(t, "four", s.LastUserText())
}

func TestSession_CloneIsolation(t *testing.T) {
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "hello", "")
	s.Context["industry"] = "retail"
	s.RecordError(domain.ErrorResponderFailure, "respond", "boom")

	clone := s.Clone()
	clone.SetSection(domain.SectionPurpose, true)
	clone.AppendTurn(domain.RoleUser, "more", "")
	clone.Context["industry"] = "energy"
	clone.Error.Message = "changed"

	assert.False(t, s.Sections[domain.SectionPurpose])
	assert.Len(t, s.Turns, 1)
	assert.Equal(t, "retail", s.Context["industry"])
	assert.Equal(t, "boom", s.Error.Message)
}

func TestSession_ForcePhaseResetsActiveAgent(t *testing.T) {
	s := domain.NewSession("s1")
	s.ActiveAgent = domain.ResponderVision

	s.ForcePhase(domain.PhasePlanning)

	assert.Equal(t, domain.PhasePlanning, s.Phase)
	assert.Empty(t, s.ActiveAgent)
}

func TestParsePhase(t *testing.T) {
	p, err := domain.ParsePhase("reasoning")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseReasoning, p)

	_, err = domain.ParsePhase("daydreaming")
	assert.ErrorIs(t, err, domain.ErrInvalidPhase)
}

func TestDocument_UpsertAndStatus(t *testing.T) {
	doc := domain.NewDocument("s1")
	require.Len(t, doc.Sections, 8)

	doc.Upsert(domain.SectionPurpose, "", "We exist to simplify logistics.", true)
	doc.Upsert("regulatory_review", "Regulatory Review", "Pending counsel.", false)

	sec := doc.Section(domain.SectionPurpose)
	require.NotNil(t, sec)
	assert.True(t, sec.Done)
	assert.Equal(t, "Purpose", sec.Title)

	status := doc.Status()
	assert.True(t, status[domain.SectionPurpose])
	assert.False(t, status["regulatory_review"])
	assert.Len(t, status, 9)
}
