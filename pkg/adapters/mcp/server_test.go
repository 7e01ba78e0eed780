package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnlabs/cairn/internal/runtime"
	"github.com/cairnlabs/cairn/pkg/adapters/memory"
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/responders"
	"github.com/cairnlabs/cairn/pkg/session"
)

func newTestServer(t *testing.T) (*Server, *session.Manager, *memory.DocStore) {
	t.Helper()
	docs := memory.NewDocStore()
	engine := runtime.NewEngine(responders.Default(nil, docs), runtime.WithDocumentStore(docs))
	mgr := session.NewManager(memory.NewStore())
	return NewServer(engine, mgr, WithDocumentStore(docs)), mgr, docs
}

func TestStartSession_MintsID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	sess, err := srv.handleStartSession(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.PhaseDiscovery, sess.Phase)
}

func TestStartSession_ResumesExisting(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx := context.Background()

	first, err := srv.handleStartSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "keep"})
	require.NoError(t, err)

	_, err = srv.handleCoachMessage(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "keep",
		"message":    "We build irrigation kits.",
	})
	require.NoError(t, err)

	again, err := srv.handleStartSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "keep"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.NotEmpty(t, again.Turns, "resuming must not reset the session")
}

func TestCoachMessage_RunsFullTurn(t *testing.T) {
	srv, mgr, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleStartSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "conv"})
	require.NoError(t, err)

	resp, err := srv.handleCoachMessage(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "conv",
		"message":    "We want to enter the Brazilian logistics market.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Session)
	require.NotEmpty(t, resp.Replies)
	assert.Equal(t, domain.RoleResponder, resp.Replies[len(resp.Replies)-1].Role)
	assert.False(t, resp.Complete)

	stored, err := mgr.Load(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, len(resp.Session.Turns), len(stored.Turns))
}

func TestCoachMessage_UnknownSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.handleCoachMessage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "ghost",
		"message":    "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCoachMessage_EmptyRejected(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.handleCoachMessage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "conv",
		"message":    "   ",
	})
	require.Error(t, err)
}

func TestCoachMessage_OversizeRejected(t *testing.T) {
	t.Setenv("CAIRN_MAX_INPUT_SIZE", "10")
	srv, _, _ := newTestServer(t)

	_, err := srv.handleCoachMessage(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "conv",
		"message":    "this is far longer than ten bytes",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input rejected")
}

func TestGetSession(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleGetSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "ghost"})
	require.Error(t, err)

	_, err = srv.handleStartSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "known"})
	require.NoError(t, err)

	sess, err := srv.handleGetSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "known"})
	require.NoError(t, err)
	assert.Equal(t, "known", sess.ID)
}

func TestGetDocument(t *testing.T) {
	srv, _, docs := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleGetDocument(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "doc-1"})
	require.Error(t, err, "missing brief must error")

	doc := domain.NewDocument("doc-1")
	doc.Upsert("purpose", "", "We make rural deliveries dependable.", true)
	require.NoError(t, docs.Save(ctx, doc))

	loaded, err := srv.handleGetDocument(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", loaded.SessionID)
	require.Len(t, loaded.Sections, 1)
}

func TestReadGraphResource(t *testing.T) {
	srv, _, _ := newTestServer(t)

	contents, err := srv.readGraphResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "cairn://graph", text.URI)
	assert.True(t, strings.Contains(text.Text, domain.NodeProgressUpdate))
}

func TestToolArgs_RejectsWrongTypes(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.handleGetSession(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": 42,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad tool arguments")
}
