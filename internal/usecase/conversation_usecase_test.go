package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/internal/domain/mocks"
)

type controllerFixture struct {
	ctrl   *ConversationController
	store  *SessionStore
	client *mocks.MockReportClient
	alloc  *mocks.MockResourceAllocator
	source *mocks.MockSessionSource
}

func newControllerFixture(generate func(ctx context.Context, req domain.ReportRequest) entity.Result) *controllerFixture {
	alloc := &mocks.MockResourceAllocator{}
	client := &mocks.MockReportClient{GenerateReportFunc: generate}
	source := &mocks.MockSessionSource{}
	store := NewSessionStore(alloc, testLogger)
	ctrl := NewConversationController(store, client, NewArtifactResolver(alloc, testLogger), ControllerOptions{
		UserID:    "user-1",
		ProjectID: "project-1",
		Source:    source,
		Logger:    testLogger,
	})
	return &controllerFixture{ctrl: ctrl, store: store, client: client, alloc: alloc, source: source}
}

func TestConversationController_SendMessageAppendsTwoMessages(t *testing.T) {
	tests := []struct {
		name   string
		result entity.Result
		want   entity.Artifact
	}{
		{
			// create session, send with HTML format, backend answers text/html
			name:   "html report",
			result: entity.HTMLResult{Content: "<p>Sales up 10%</p>"},
			want:   entity.HTMLArtifact{Content: "<p>Sales up 10%</p>"},
		},
		{
			name:   "connection error",
			result: domain.ToErrorResult(domain.NewTransportError(errors.New("connection refused"))),
			want:   entity.ErrorArtifact{Code: entity.CodeTransport, Message: domain.MessageTransport},
		},
		{
			name:   "unhandled content type",
			result: domain.ToErrorResult(domain.NewUnclassifiedError("application/xml")),
			want:   entity.ErrorArtifact{Code: entity.CodeUnclassified, Message: "unknown response type."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newControllerFixture(func(ctx context.Context, req domain.ReportRequest) entity.Result {
				return tt.result
			})
			session := f.ctrl.CreateSession()

			out, err := f.ctrl.SendMessage(context.Background(), "Summarize Q1 sales", entity.FormatHTML)
			require.NoError(t, err)
			require.False(t, out.Skipped)
			require.False(t, out.Discarded)
			require.Equal(t, session.ID, out.SessionID)

			log := f.store.Messages(session.ID)
			require.Len(t, log, 2)
			require.Equal(t, entity.SenderUser, log[0].Sender)
			require.Equal(t, entity.TextArtifact{Content: "Summarize Q1 sales"}, log[0].Artifact)
			require.Equal(t, entity.SenderAssistant, log[1].Sender)
			require.Equal(t, tt.want, log[1].Artifact)
			require.Equal(t, out.Reply, log[1])
			require.False(t, f.ctrl.IsAwaiting(session.ID))

			reqs := f.client.Requests()
			require.Len(t, reqs, 1)
			require.Equal(t, domain.ReportRequest{
				Query:     "Summarize Q1 sales",
				UserID:    "user-1",
				ProjectID: "project-1",
				Format:    entity.FormatHTML,
			}, reqs[0])
		})
	}
}

func TestConversationController_SendMessagePDF(t *testing.T) {
	f := newControllerFixture(func(ctx context.Context, req domain.ReportRequest) entity.Result {
		return entity.DocumentResult{
			DocumentKind: entity.DocumentPDF,
			ContentType:  "application/pdf",
			FileName:     "q1.pdf",
			Data:         []byte("%PDF-1.4"),
		}
	})
	session := f.ctrl.CreateSession()

	out, err := f.ctrl.SendMessage(context.Background(), "Q1 as pdf", entity.FormatText)
	require.NoError(t, err)

	doc, ok := out.Reply.Artifact.(entity.DocumentArtifact)
	require.True(t, ok)
	require.Equal(t, entity.DocumentPDF, doc.DocumentKind)
	require.Equal(t, "q1.pdf", doc.FileName)
	require.NotEmpty(t, doc.Handle)
	require.Equal(t, 1, f.alloc.Live())

	f.ctrl.DeleteSession(context.Background(), session.ID)
	require.Equal(t, 1, f.alloc.ReleaseCount(doc.Handle))
	require.Zero(t, f.alloc.Live())
}

func TestConversationController_BlankInputIsNoop(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		f := newControllerFixture(nil)
		session := f.ctrl.CreateSession()

		out, err := f.ctrl.SendMessage(context.Background(), text, entity.FormatPDF)
		require.NoError(t, err)
		require.True(t, out.Skipped)
		require.Empty(t, f.store.Messages(session.ID))
		require.Zero(t, f.client.Calls())
	}
}

func TestConversationController_NoActiveSessionIsNoop(t *testing.T) {
	f := newControllerFixture(nil)

	out, err := f.ctrl.SendMessage(context.Background(), "hello", entity.FormatPDF)
	require.NoError(t, err)
	require.True(t, out.Skipped)
	require.Zero(t, f.client.Calls())

	ch, err := f.ctrl.SendMessageAsync(context.Background(), "hello", entity.FormatPDF)
	require.NoError(t, err)
	require.True(t, (<-ch).Skipped)
}

func TestConversationController_DefaultFormatIsPDF(t *testing.T) {
	f := newControllerFixture(nil)
	f.ctrl.CreateSession()

	_, err := f.ctrl.SendMessage(context.Background(), "hello", "")
	require.NoError(t, err)
	require.Equal(t, entity.FormatPDF, f.client.Requests()[0].Format)
}

// blockingClient returns a generate func that waits on release and signals started
func blockingClient(result entity.Result) (func(ctx context.Context, req domain.ReportRequest) entity.Result, chan struct{}, chan struct{}) {
	started := make(chan struct{}, 8)
	release := make(chan struct{})
	return func(ctx context.Context, req domain.ReportRequest) entity.Result {
		started <- struct{}{}
		<-release
		return result
	}, started, release
}

func TestConversationController_SecondSendOnBusySessionIsRejected(t *testing.T) {
	generate, started, release := blockingClient(entity.TextResult{Content: "done"})
	f := newControllerFixture(generate)
	session := f.ctrl.CreateSession()

	ch, err := f.ctrl.SendMessageAsync(context.Background(), "first", entity.FormatText)
	require.NoError(t, err)
	<-started
	require.True(t, f.ctrl.IsAwaiting(session.ID))

	_, err = f.ctrl.SendMessage(context.Background(), "second", entity.FormatText)
	require.True(t, domain.IsSessionBusy(err))
	require.Len(t, f.store.Messages(session.ID), 1, "rejected send must not append")

	// another session is not blocked
	other := f.ctrl.CreateSession()
	ch2, err := f.ctrl.SendMessageAsync(context.Background(), "elsewhere", entity.FormatText)
	require.NoError(t, err)
	<-started
	require.True(t, f.ctrl.IsAwaiting(other.ID))

	close(release)
	out := <-ch
	out2 := <-ch2

	require.Equal(t, session.ID, out.SessionID)
	require.Equal(t, other.ID, out2.SessionID)
	require.Len(t, f.store.Messages(session.ID), 2)
	require.Len(t, f.store.Messages(other.ID), 2)
	require.False(t, f.ctrl.IsAwaiting(session.ID))
	require.False(t, f.ctrl.IsAwaiting(other.ID))
}

func TestConversationController_ReplyGoesToOriginatingSession(t *testing.T) {
	generate, started, release := blockingClient(entity.MarkdownResult{Content: "# A"})
	f := newControllerFixture(generate)
	a := f.ctrl.CreateSession()

	ch, err := f.ctrl.SendMessageAsync(context.Background(), "for A", entity.FormatMarkdown)
	require.NoError(t, err)
	<-started

	b := f.ctrl.CreateSession()
	require.Equal(t, b.ID, f.store.ActiveSessionID())

	close(release)
	out := <-ch

	require.Equal(t, a.ID, out.SessionID)
	require.Len(t, f.store.Messages(a.ID), 2)
	require.Empty(t, f.store.Messages(b.ID))
}

func TestConversationController_DeleteWhileAwaitingReleasesResource(t *testing.T) {
	generate, started, release := blockingClient(entity.DocumentResult{
		DocumentKind: entity.DocumentPDF,
		ContentType:  "application/pdf",
		FileName:     "late.pdf",
		Data:         []byte("%PDF"),
	})
	f := newControllerFixture(generate)
	a := f.ctrl.CreateSession()

	ch, err := f.ctrl.SendMessageAsync(context.Background(), "slow report", entity.FormatPDF)
	require.NoError(t, err)
	<-started

	b := f.ctrl.CreateSession()
	_, err = f.store.AppendMessage(b.ID, entity.SenderUser, entity.TextArtifact{Content: "b stays"})
	require.NoError(t, err)
	require.True(t, f.ctrl.DeleteSession(context.Background(), a.ID))

	close(release)
	out := <-ch

	require.True(t, out.Discarded)
	require.Zero(t, out.Reply.ID)
	require.Nil(t, f.store.Messages(a.ID))
	require.Len(t, f.store.Messages(b.ID), 1)
	require.Equal(t, b.ID, f.store.ActiveSessionID())

	allocated := f.alloc.Allocated()
	require.Len(t, allocated, 1)
	require.Equal(t, 1, f.alloc.ReleaseCount(allocated[0]))
	require.Zero(t, f.alloc.Live())
	require.False(t, f.ctrl.IsAwaiting(a.ID))
}

func TestConversationController_Close(t *testing.T) {
	generate, started, release := blockingClient(entity.DocumentResult{
		DocumentKind: entity.DocumentDOCX,
		FileName:     "r.docx",
		Data:         []byte("PK"),
	})
	f := newControllerFixture(generate)
	f.ctrl.CreateSession()

	ch, err := f.ctrl.SendMessageAsync(context.Background(), "report", entity.FormatDOCX)
	require.NoError(t, err)
	<-started

	closed := make(chan error, 1)
	go func() { closed <- f.ctrl.Close(context.Background()) }()

	select {
	case <-closed:
		t.Fatal("Close returned before the in-flight send finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.False(t, (<-ch).Discarded)
	require.NoError(t, <-closed)

	require.Zero(t, f.store.Len())
	require.Zero(t, f.alloc.Live())

	_, err = f.ctrl.SendMessage(context.Background(), "after close", entity.FormatPDF)
	require.ErrorIs(t, err, ErrControllerClosed)
}

func TestConversationController_CloseTimeout(t *testing.T) {
	generate, started, release := blockingClient(entity.DocumentResult{
		DocumentKind: entity.DocumentPDF,
		FileName:     "late.pdf",
		Data:         []byte("%PDF"),
	})
	f := newControllerFixture(generate)
	f.ctrl.CreateSession()

	ch, err := f.ctrl.SendMessageAsync(context.Background(), "report", entity.FormatPDF)
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, f.ctrl.Close(ctx), context.DeadlineExceeded)

	// the late reply finds no session and releases its own resource
	close(release)
	require.True(t, (<-ch).Discarded)
	require.Zero(t, f.alloc.Live())
}

func TestConversationController_Hydrate(t *testing.T) {
	f := newControllerFixture(nil)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	f.source.ListSessionsFunc = func(ctx context.Context, userID string) ([]domain.RemoteSession, error) {
		require.Equal(t, "user-1", userID)
		return []domain.RemoteSession{
			{ID: "s1", Name: "Sales", CreatedAt: created},
			{ID: "s2", Name: "Ops"},
		}, nil
	}
	f.source.GetSessionMessagesFunc = func(ctx context.Context, sessionID string) ([]domain.RemoteMessage, error) {
		if sessionID == "s1" {
			return []domain.RemoteMessage{
				{Sender: "user", Type: "text", Content: "q1?"},
				{Sender: "ai", Type: "html", Content: "<p>ok</p><script>x()</script>"},
				{Sender: "ai", Type: "pdf", FileName: "q1.pdf"},
				{Sender: "ai", Type: "docx"},
			}, nil
		}
		return nil, nil
	}

	n, err := f.ctrl.Hydrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	sessions := f.store.Sessions()
	require.Len(t, sessions, 2)
	require.Equal(t, "Sales", sessions[0].DisplayName)
	require.Equal(t, created, sessions[0].CreatedAt)

	log := f.store.Messages("s1")
	require.Len(t, log, 4)
	require.Equal(t, entity.SenderUser, log[0].Sender)
	require.Equal(t, entity.HTMLArtifact{Content: "<p>ok</p>"}, log[1].Artifact)
	require.Equal(t, entity.TextArtifact{Content: "[pdf report: q1.pdf]"}, log[2].Artifact)
	require.Equal(t, entity.TextArtifact{Content: "[docx report: report.docx]"}, log[3].Artifact)
	require.Empty(t, f.alloc.Allocated())

	// hydrating again inserts nothing new
	n, err = f.ctrl.Hydrate(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestConversationController_HydrateFailureLeavesStoreUnchanged(t *testing.T) {
	f := newControllerFixture(nil)
	local := f.ctrl.CreateSession()

	f.source.ListSessionsFunc = func(ctx context.Context, userID string) ([]domain.RemoteSession, error) {
		return []domain.RemoteSession{{ID: "s1"}, {ID: "s2"}}, nil
	}
	f.source.GetSessionMessagesFunc = func(ctx context.Context, sessionID string) ([]domain.RemoteMessage, error) {
		if sessionID == "s2" {
			return nil, domain.NewTransportError(errors.New("HTTP status: 500"))
		}
		return nil, nil
	}

	n, err := f.ctrl.Hydrate(context.Background())
	require.Error(t, err)
	require.Zero(t, n)
	require.Equal(t, []entity.Session{local}, f.store.Sessions())
}
