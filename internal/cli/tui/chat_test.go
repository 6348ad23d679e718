package tui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/internal/domain/mocks"
	"github.com/mansidw/aakar-cli/internal/usecase"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fixture struct {
	alloc *mocks.MockResourceAllocator
	ctrl  *usecase.ConversationController
}

func newFixture(generate func(ctx context.Context, req domain.ReportRequest) entity.Result) fixture {
	alloc := &mocks.MockResourceAllocator{}
	store := usecase.NewSessionStore(alloc, testLogger)
	client := &mocks.MockReportClient{GenerateReportFunc: generate}
	resolver := usecase.NewArtifactResolver(alloc, testLogger)
	ctrl := usecase.NewConversationController(store, client, resolver, usecase.ControllerOptions{
		UserID: "u-1",
		Logger: testLogger,
	})
	return fixture{alloc: alloc, ctrl: ctrl}
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func update(t *testing.T, m chatModel, msg tea.Msg) chatModel {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(chatModel)
	require.True(t, ok)
	return out
}

func TestChatModel_StartsWithSession(t *testing.T) {
	f := newFixture(nil)
	m := initialModel(context.Background(), f.ctrl, Options{})

	require.Equal(t, 1, f.ctrl.Store().Len())
	require.Equal(t, entity.FormatPDF, m.format)
	require.Contains(t, m.View(), "New Session 1")
}

func TestChatModel_SendAndReceive(t *testing.T) {
	f := newFixture(func(ctx context.Context, req domain.ReportRequest) entity.Result {
		return entity.TextResult{Content: "revenue grew 12%"}
	})
	m := initialModel(context.Background(), f.ctrl, Options{Format: entity.FormatText})
	sessionID := f.ctrl.Store().ActiveSessionID()

	m.input.SetValue("how did revenue do?")
	cmd := m.send()
	require.NotNil(t, cmd)
	require.Empty(t, m.input.Value())

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	msg, ok := batch[0]().(replyMsg)
	require.True(t, ok)
	require.Equal(t, sessionID, msg.outcome.SessionID)
	require.Len(t, f.ctrl.Store().Messages(sessionID), 2)

	m = update(t, m, msg)
	view := m.View()
	require.Contains(t, view, "how did revenue do?")
	require.Contains(t, view, "revenue grew 12%")
}

func TestChatModel_BlankInputDoesNothing(t *testing.T) {
	f := newFixture(nil)
	m := initialModel(context.Background(), f.ctrl, Options{})

	m.input.SetValue("   ")
	require.Nil(t, m.send())
	require.Empty(t, f.ctrl.Store().ActiveMessages())
}

func TestChatModel_BusySessionShowsNotice(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := newFixture(func(ctx context.Context, req domain.ReportRequest) entity.Result {
		<-release
		return entity.TextResult{Content: "late"}
	})
	m := initialModel(context.Background(), f.ctrl, Options{Format: entity.FormatText})

	m.input.SetValue("first")
	require.NotNil(t, m.send())

	m.input.SetValue("second")
	require.Nil(t, m.send())
	require.Contains(t, m.notice, "still being generated")
	require.Equal(t, "second", m.input.Value())
	require.Len(t, f.ctrl.Store().ActiveMessages(), 1)
}

func TestChatModel_FormatCycles(t *testing.T) {
	f := newFixture(nil)
	m := initialModel(context.Background(), f.ctrl, Options{})

	m = update(t, m, key(tea.KeyTab))
	require.Equal(t, entity.FormatHTML, m.format)
	m = update(t, m, key(tea.KeyTab))
	require.Equal(t, entity.FormatMarkdown, m.format)
}

func TestChatModel_SessionManagement(t *testing.T) {
	f := newFixture(nil)
	m := initialModel(context.Background(), f.ctrl, Options{})
	first := f.ctrl.Store().ActiveSessionID()

	m = update(t, m, key(tea.KeyCtrlN))
	second := f.ctrl.Store().ActiveSessionID()
	require.NotEqual(t, first, second)
	require.Equal(t, 2, f.ctrl.Store().Len())

	m = update(t, m, key(tea.KeyCtrlUp))
	require.Equal(t, first, f.ctrl.Store().ActiveSessionID())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	require.Equal(t, second, f.ctrl.Store().ActiveSessionID())

	m = update(t, m, key(tea.KeyCtrlX))
	require.Equal(t, 1, f.ctrl.Store().Len())
	require.Equal(t, first, f.ctrl.Store().ActiveSessionID())

	m = update(t, m, key(tea.KeyCtrlX))
	require.Zero(t, f.ctrl.Store().Len())
	require.Contains(t, m.View(), "Ctrl+N")
}

func TestChatModel_ReplyToOtherSessionMarksUnread(t *testing.T) {
	f := newFixture(nil)
	m := initialModel(context.Background(), f.ctrl, Options{})
	first := f.ctrl.Store().ActiveSessionID()
	m = update(t, m, key(tea.KeyCtrlN))

	m = update(t, m, replyMsg{outcome: usecase.SendOutcome{SessionID: first}})
	require.True(t, m.unread[first])

	m = update(t, m, key(tea.KeyCtrlUp))
	require.False(t, m.unread[first])
}

type mapOpener map[entity.ResourceHandle]entity.Blob

func (o mapOpener) OpenHandle(handle entity.ResourceHandle) (entity.Blob, error) {
	blob, ok := o[handle]
	if !ok {
		return entity.Blob{}, domain.NewNotFoundError("blob", string(handle))
	}
	return blob, nil
}

func TestChatModel_SaveDocument(t *testing.T) {
	f := newFixture(func(ctx context.Context, req domain.ReportRequest) entity.Result {
		return entity.DocumentResult{DocumentKind: entity.DocumentPDF, FileName: "q1.pdf", Data: []byte("%PDF-1.7")}
	})
	dir := t.TempDir()
	m := initialModel(context.Background(), f.ctrl, Options{SaveDir: dir})

	// nothing to save yet
	require.Nil(t, m.saveDocument())
	require.Contains(t, m.notice, "No document")

	_, err := f.ctrl.SendMessage(context.Background(), "q1 report", entity.FormatPDF)
	require.NoError(t, err)
	handle := f.alloc.Allocated()[0]

	// remote backends only show the link
	require.Nil(t, m.saveDocument())
	require.Contains(t, m.notice, string(handle))

	m.opener = mapOpener{handle: {Data: []byte("%PDF-1.7")}}
	cmd := m.saveDocument()
	require.NotNil(t, cmd)
	saved, ok := cmd().(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)
	require.Equal(t, filepath.Join(dir, "q1.pdf"), saved.path)

	data, err := os.ReadFile(saved.path)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(data))
}
