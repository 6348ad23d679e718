package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// hydrateConcurrency bounds concurrent GET /session/{id} calls
const hydrateConcurrency = 4

// Hydrate loads the user's stored sessions from the backend and inserts the
// ones not already present. On any failure nothing is inserted; the error is
// logged and returned so callers may show it, but it is never fatal.
func (c *ConversationController) Hydrate(ctx context.Context) (int, error) {
	if c.source == nil || c.userID == "" {
		return 0, nil
	}

	remote, err := c.source.ListSessions(ctx, c.userID)
	if err != nil {
		c.logger.WarnContext(ctx, "session hydration failed", "stage", "list", "error", err)
		return 0, err
	}

	hydrated := make([]domain.HydratedSession, len(remote))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)

	for i, rs := range remote {
		g.Go(func() error {
			messages, err := c.source.GetSessionMessages(gctx, rs.ID)
			if err != nil {
				return fmt.Errorf("session %s: %w", rs.ID, err)
			}

			hs := domain.HydratedSession{
				Session: entity.Session{
					ID:          entity.SessionID(rs.ID),
					DisplayName: rs.Name,
					CreatedAt:   rs.CreatedAt,
				},
				Messages: make([]domain.HydratedMessage, 0, len(messages)),
			}
			for _, m := range messages {
				hs.Messages = append(hs.Messages, domain.HydratedMessage{
					Sender:   entity.ParseSender(m.Sender),
					Artifact: c.storedArtifact(gctx, m),
				})
			}
			hydrated[i] = hs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.WarnContext(ctx, "session hydration failed", "stage", "messages", "error", err)
		return 0, err
	}

	inserted := c.store.Hydrate(hydrated)
	c.logger.InfoContext(ctx, "sessions hydrated", "remote", len(remote), "inserted", inserted)
	return inserted, nil
}

// storedArtifact converts a stored message into an Artifact. Stored binary
// reports carry no payload, so they become a text placeholder and never
// allocate a resource.
func (c *ConversationController) storedArtifact(ctx context.Context, m domain.RemoteMessage) entity.Artifact {
	switch kind := strings.ToLower(m.Type); kind {
	case "html":
		return c.resolver.Resolve(ctx, entity.HTMLResult{Content: m.Content})
	case "markdown", "md":
		return c.resolver.Resolve(ctx, entity.MarkdownResult{Content: m.Content})
	case "pdf", "docx":
		name := m.FileName
		if name == "" {
			name = "report." + kind
		}
		return entity.TextArtifact{Content: fmt.Sprintf("[%s report: %s]", kind, name)}
	case "error":
		return entity.ErrorArtifact{Code: entity.CodeTransport, Message: m.Content}
	default:
		return c.resolver.Resolve(ctx, entity.TextResult{Content: m.Content})
	}
}
