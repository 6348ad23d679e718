package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// ErrControllerClosed is returned by sends issued after Close
var ErrControllerClosed = errors.New("conversation controller closed")

// SendOutcome describes what one SendMessage call did
type SendOutcome struct {
	SessionID   entity.SessionID
	UserMessage entity.Message
	// Reply is the assistant message; zero when Skipped or Discarded
	Reply entity.Message
	// Discarded is set when the session was deleted before the reply arrived
	Discarded bool
	// Skipped is set when the text was blank or no session was active
	Skipped bool
}

// ControllerOptions configures a ConversationController
type ControllerOptions struct {
	UserID    string
	ProjectID string
	// Source is used by Hydrate; nil disables hydration
	Source domain.SessionSource
	// Releaser frees resources of replies whose session is gone.
	// Defaults to the allocator the store was built with.
	Releaser domain.ResourceAllocator
	Logger   *slog.Logger
}

// ConversationController turns user input into report requests and appends
// both sides of the exchange to a SessionStore. Each session is idle or
// awaiting a response; a second send on an awaiting session is rejected.
type ConversationController struct {
	store    *SessionStore
	client   domain.ReportClient
	resolver domain.ArtifactResolver
	source   domain.SessionSource
	releaser domain.ResourceAllocator

	userID    string
	projectID string
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[entity.SessionID]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewConversationController wires a controller around an existing store
func NewConversationController(
	store *SessionStore,
	client domain.ReportClient,
	resolver domain.ArtifactResolver,
	opts ControllerOptions,
) *ConversationController {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	releaser := opts.Releaser
	if releaser == nil {
		releaser = store.releaser
	}
	return &ConversationController{
		store:     store,
		client:    client,
		resolver:  resolver,
		source:    opts.Source,
		releaser:  releaser,
		userID:    opts.UserID,
		projectID: opts.ProjectID,
		logger:    logger.With("component", "conversation"),
		inflight:  make(map[entity.SessionID]struct{}),
	}
}

// pendingSend is a send whose user message is already in the log
type pendingSend struct {
	outcome SendOutcome
	request domain.ReportRequest
}

// SendMessage sends text to the active session and blocks until the reply
// has been appended (or discarded). Blank text or no active session is a
// no-op reported through SendOutcome.Skipped.
//
// Errors:
//   - SESSION_BUSY: the active session already awaits a response
//   - ErrControllerClosed: Close has been called
func (c *ConversationController) SendMessage(ctx context.Context, text string, format entity.RequestFormat) (SendOutcome, error) {
	pending, err := c.begin(text, format)
	if err != nil || pending.outcome.Skipped {
		return pending.outcome, err
	}
	defer c.wg.Done()
	return c.complete(ctx, pending), nil
}

// SendMessageAsync appends the user message synchronously and completes the
// request in the background. The returned channel yields exactly one
// outcome and is then closed.
func (c *ConversationController) SendMessageAsync(ctx context.Context, text string, format entity.RequestFormat) (<-chan SendOutcome, error) {
	pending, err := c.begin(text, format)
	if err != nil {
		return nil, err
	}

	done := make(chan SendOutcome, 1)
	if pending.outcome.Skipped {
		done <- pending.outcome
		close(done)
		return done, nil
	}

	go func() {
		defer c.wg.Done()
		defer close(done)
		done <- c.complete(ctx, pending)
	}()
	return done, nil
}

// begin validates the input, appends the user message and marks the session
// as awaiting. On success with a non-skipped outcome the caller must run
// complete and then call c.wg.Done.
func (c *ConversationController) begin(text string, format entity.RequestFormat) (pendingSend, error) {
	if strings.TrimSpace(text) == "" {
		return pendingSend{outcome: SendOutcome{Skipped: true}}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return pendingSend{}, ErrControllerClosed
	}

	sessionID := c.store.ActiveSessionID()
	if sessionID == "" {
		return pendingSend{outcome: SendOutcome{Skipped: true}}, nil
	}
	if _, busy := c.inflight[sessionID]; busy {
		return pendingSend{outcome: SendOutcome{SessionID: sessionID}}, domain.NewSessionBusyError(sessionID)
	}

	userMsg, err := c.store.AppendMessage(sessionID, entity.SenderUser, entity.TextArtifact{Content: text})
	if err != nil {
		// the session was deleted between reading the selection and appending
		return pendingSend{outcome: SendOutcome{SessionID: sessionID, Skipped: true}}, nil
	}

	c.inflight[sessionID] = struct{}{}
	c.wg.Add(1)

	if format == "" {
		format = entity.FormatPDF
	}
	return pendingSend{
		outcome: SendOutcome{SessionID: sessionID, UserMessage: userMsg},
		request: domain.ReportRequest{
			Query:     text,
			UserID:    c.userID,
			ProjectID: c.projectID,
			Format:    format,
		},
	}, nil
}

// complete performs the request and appends the reply to the originating
// session, whichever session is active by then
func (c *ConversationController) complete(ctx context.Context, p pendingSend) SendOutcome {
	sessionID := p.outcome.SessionID
	defer func() {
		c.mu.Lock()
		delete(c.inflight, sessionID)
		c.mu.Unlock()
	}()

	start := time.Now()
	result := c.client.GenerateReport(ctx, p.request)
	artifact := c.resolver.Resolve(ctx, result)

	reply, err := c.store.AppendMessage(sessionID, entity.SenderAssistant, artifact)
	if err != nil {
		c.discard(ctx, sessionID, artifact)
		p.outcome.Discarded = true
		return p.outcome
	}

	c.logger.InfoContext(ctx, "report delivered",
		"session_id", sessionID,
		"format", p.request.Format,
		"artifact", artifact.Kind(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	p.outcome.Reply = reply
	return p.outcome
}

// discard releases the resource of a reply that has no session to go to
func (c *ConversationController) discard(ctx context.Context, sessionID entity.SessionID, artifact entity.Artifact) {
	handle, owned := entity.OwnedResource(artifact)
	c.logger.InfoContext(ctx, "reply discarded, session no longer exists",
		"session_id", sessionID,
		"artifact", artifact.Kind(),
		"owned_resource", owned,
	)
	if !owned || c.releaser == nil {
		return
	}
	if err := c.releaser.Release(ctx, handle); err != nil {
		c.logger.WarnContext(ctx, "failed to release discarded resource", "handle", handle, "error", err)
	}
}

// IsAwaiting reports whether sessionID has a request in flight
func (c *ConversationController) IsAwaiting(sessionID entity.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[sessionID]
	return ok
}

// CreateSession creates a session and makes it active
func (c *ConversationController) CreateSession() entity.Session {
	return c.store.CreateSession()
}

// SelectSession switches the active session; in-flight requests are not cancelled
func (c *ConversationController) SelectSession(id entity.SessionID) error {
	return c.store.SelectSession(id)
}

// DeleteSession deletes a session; a pending reply for it will be discarded
func (c *ConversationController) DeleteSession(ctx context.Context, id entity.SessionID) bool {
	return c.store.DeleteSession(ctx, id)
}

// Store exposes the read accessors of the underlying store
func (c *ConversationController) Store() *SessionStore {
	return c.store
}

// Close rejects new sends, waits for in-flight ones until ctx is done and
// then tears down the store. Replies that arrive after the teardown find
// their session gone and release their own resources.
func (c *ConversationController) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(waited)
	}()

	var err error
	select {
	case <-waited:
	case <-ctx.Done():
		err = fmt.Errorf("waiting for in-flight reports: %w", ctx.Err())
	}

	c.store.Close(context.WithoutCancel(ctx))
	return err
}
