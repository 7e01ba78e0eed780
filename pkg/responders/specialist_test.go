package responders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
	"github.com/cairnlabs/cairn/pkg/responders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingModel struct {
	err error
}

func (f failingModel) Complete(ctx context.Context, prompt string) (string, error) {
	return "", f.err
}

func (f failingModel) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", f.err
}

func TestSpecialist_PrimaryThenSecondary(t *testing.T) {
	r := responders.NewVision(nil)
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "we want to change how small clinics buy software", "")

	out, err := r.Process(context.Background(), s, s.LastUserText())
	require.NoError(t, err)

	assert.Equal(t, domain.ResponderVision, out.ActiveAgent)
	assert.Equal(t, "vision_completed", out.Stage)
	assert.True(t, out.Sections[domain.SectionPurpose])
	assert.False(t, out.Sections[domain.SectionWhereToPlay])

	require.Len(t, out.Turns, 2)
	last := out.Turns[len(out.Turns)-1]
	assert.Equal(t, domain.RoleResponder, last.Role)
	assert.Equal(t, domain.ResponderVision, last.Agent)
	assert.Equal(t, last.Content, out.LastOutput)

	// The still-open secondary section leaves a gap note.
	require.Len(t, out.Gaps, 1)
	assert.Equal(t, domain.SectionWhereToPlay, out.Gaps[0].Section)
	assert.Contains(t, out.Gaps[0].Note, "Where to Play")

	// A second pass closes the secondary without a new gap.
	out2, err := r.Process(context.Background(), out, out.LastUserText())
	require.NoError(t, err)
	assert.True(t, out2.Sections[domain.SectionWhereToPlay])
	assert.Len(t, out2.Gaps, 1)
}

func TestSpecialist_SectionOwnership(t *testing.T) {
	cases := []struct {
		responder ports.Responder
		primary   string
		secondary string
	}{
		{responders.NewVision(nil), domain.SectionPurpose, domain.SectionWhereToPlay},
		{responders.NewAnalogy(nil), domain.SectionCaseStudies, domain.SectionHowToWin},
		{responders.NewLogic(nil), domain.SectionLogicCheck, domain.SectionCapability},
		{responders.NewExecution(nil), domain.SectionActionPlan, domain.SectionSystems},
	}
	for _, tc := range cases {
		t.Run(tc.responder.ID(), func(t *testing.T) {
			s := domain.NewSession("s1")
			s.AppendTurn(domain.RoleUser, "where do we even start", "")

			out, err := tc.responder.Process(context.Background(), s, s.LastUserText())
			require.NoError(t, err)
			assert.True(t, out.Sections[tc.primary])
			assert.False(t, out.Sections[tc.secondary])

			out2, err := tc.responder.Process(context.Background(), out, out.LastUserText())
			require.NoError(t, err)
			assert.True(t, out2.Sections[tc.secondary])
		})
	}
}

func TestSpecialist_BuiltinOutputIsSubstantial(t *testing.T) {
	all := []ports.Responder{
		responders.NewVision(nil),
		responders.NewAnalogy(nil),
		responders.NewLogic(nil),
		responders.NewExecution(nil),
	}
	for _, r := range all {
		t.Run(r.ID(), func(t *testing.T) {
			fresh := domain.NewSession("s1")
			fresh.AppendTurn(domain.RoleUser, "help me think this through", "")
			out, err := r.Process(context.Background(), fresh, fresh.LastUserText())
			require.NoError(t, err)
			assert.Greater(t, len(out.LastOutput), 20)

			// The other phrasing branch, once the primary section is done.
			out2, err := r.Process(context.Background(), out, out.LastUserText())
			require.NoError(t, err)
			assert.Greater(t, len(out2.LastOutput), 20)
		})
	}
}

func TestSpecialist_ModelReplyUsedVerbatim(t *testing.T) {
	model := responders.NewStaticModel("Scripted analysis of the weakest assumption.")
	r := responders.NewLogic(model)
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "check my reasoning", "")

	out, err := r.Process(context.Background(), s, s.LastUserText())
	require.NoError(t, err)
	assert.Equal(t, "Scripted analysis of the weakest assumption.", out.LastOutput)
	assert.True(t, out.Sections[domain.SectionLogicCheck])
}

func TestSpecialist_ModelFailureFallsBack(t *testing.T) {
	r := responders.NewVision(failingModel{err: errors.New("upstream 500")})
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "we want to build something big", "")

	out, err := r.Process(context.Background(), s, s.LastUserText())
	require.NoError(t, err, "failures must stay inside the responder")

	require.NotNil(t, out.Error)
	assert.Equal(t, domain.ErrorResponderFailure, out.Error.Kind)
	assert.Equal(t, domain.NodeRespond, out.Error.Node)
	assert.Contains(t, out.Error.Message, "vision")
	assert.Contains(t, out.Error.Message, "upstream 500")

	require.Len(t, out.Turns, 2)
	last := out.Turns[len(out.Turns)-1]
	assert.Equal(t, domain.ResponderVision, last.Agent)
	assert.NotEmpty(t, last.Content)

	// No progress claimed on a failed pass.
	assert.Equal(t, domain.ResponderVision, out.ActiveAgent)
	assert.Empty(t, out.Stage)
	assert.Empty(t, out.LastOutput)
	assert.False(t, out.Sections[domain.SectionPurpose])
}

func TestSpecialist_EmptyModelOutputFallsBack(t *testing.T) {
	r := responders.NewAnalogy(responders.NewStaticModel("   \n\t"))
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "compare us to someone", "")

	out, err := r.Process(context.Background(), s, s.LastUserText())
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Contains(t, out.Error.Message, "empty output")
	assert.False(t, out.Sections[domain.SectionCaseStudies])
}

func TestSpecialist_CancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := responders.NewExecution(responders.NewStaticModel())
	s := domain.NewSession("s1")
	s.AppendTurn(domain.RoleUser, "make a plan", "")

	out, err := r.Process(ctx, s, s.LastUserText())
	require.NoError(t, err)
	require.NotNil(t, out.Error)
	assert.Contains(t, out.Error.Message, context.Canceled.Error())
}

func TestDefault_CoversEveryDispatchTarget(t *testing.T) {
	set := responders.Default(nil, nil)
	require.Len(t, set, 5)
	for _, id := range []string{
		domain.ResponderVision,
		domain.ResponderAnalogy,
		domain.ResponderLogic,
		domain.ResponderExecution,
		domain.ResponderProgress,
	} {
		r, ok := set[id]
		require.True(t, ok, "missing responder %s", id)
		assert.Equal(t, id, r.ID())
	}
}
