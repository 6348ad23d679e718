package domain

import (
	"context"
	"time"

	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// ============ DTOs shared between usecase and infrastructure ============

// ReportRequest is one report generation request
type ReportRequest struct {
	Query     string
	UserID    string
	ProjectID string
	Format    entity.RequestFormat
}

// RemoteSession is a session as listed by the backend
type RemoteSession struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// RemoteMessage is a stored chat message as returned by the backend
type RemoteMessage struct {
	ID       string
	Sender   string
	Type     string
	Content  string
	FileName string
}

// HydratedSession is a remote session with its messages already resolved
type HydratedSession struct {
	Session  entity.Session
	Messages []HydratedMessage
}

// HydratedMessage is a remote message converted to an artifact
type HydratedMessage struct {
	Sender   entity.Sender
	Artifact entity.Artifact
}

// ReportClient talks to the report generation backend
type ReportClient interface {
	// GenerateReport performs exactly one request and classifies the response.
	// Failures are returned as entity.ErrorResult, never as a Go error.
	GenerateReport(ctx context.Context, req ReportRequest) entity.Result
}

// SessionSource lists sessions stored by the backend (initial hydration only)
type SessionSource interface {
	// ListSessions lists the sessions of a user
	ListSessions(ctx context.Context, userID string) ([]RemoteSession, error)

	// GetSessionMessages returns the messages of one session in order
	GetSessionMessages(ctx context.Context, sessionID string) ([]RemoteMessage, error)
}

// ResourceAllocator manages display resources for binary payloads
type ResourceAllocator interface {
	// Allocate creates a display resource for blob and returns its handle
	Allocate(ctx context.Context, blob entity.Blob) (entity.ResourceHandle, error)

	// Release frees a handle. Releasing an unknown or already released handle
	// returns an ErrNotFound error.
	Release(ctx context.Context, handle entity.ResourceHandle) error
}

// ArtifactResolver turns a classified Result into a renderable Artifact
type ArtifactResolver interface {
	// Resolve never mutates result. Binary results allocate a resource whose
	// ownership passes to the caller.
	Resolve(ctx context.Context, result entity.Result) entity.Artifact
}
