package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/mansidw/aakar-cli/internal/cli/types"
	"github.com/mansidw/aakar-cli/internal/domain"
)

var errMalformedReport = errors.New("malformed report body")

// ListSessions lists the sessions stored by the backend for userID
func (c *APIClient) ListSessions(ctx context.Context, userID string) ([]domain.RemoteSession, error) {
	if userID == "" {
		return nil, domain.NewInvalidInputError("user id is required to list sessions")
	}

	body, err := c.get(ctx, c.server+endpointSessions+"?user_id="+url.QueryEscape(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	items, err := decodeList[types.Session](body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	sessions := make([]domain.RemoteSession, 0, len(items))
	for _, item := range items {
		id := idString(item.ID)
		if id == "" {
			continue
		}
		sessions = append(sessions, domain.RemoteSession{
			ID:        id,
			Name:      item.Name,
			CreatedAt: parseCreatedAt(item.CreatedAt, id),
		})
	}
	return sessions, nil
}

// GetSessionMessages returns the stored messages of one session
func (c *APIClient) GetSessionMessages(ctx context.Context, sessionID string) ([]domain.RemoteMessage, error) {
	if sessionID == "" {
		return nil, domain.NewInvalidInputError("session id is required")
	}

	body, err := c.get(ctx, c.server+fmt.Sprintf(endpointSessionByID, url.PathEscape(sessionID)))
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	items, err := decodeList[types.ChatMessage](body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}

	messages := make([]domain.RemoteMessage, 0, len(items))
	for _, item := range items {
		messages = append(messages, domain.RemoteMessage{
			ID:       idString(item.ID),
			Sender:   item.Sender,
			Type:     item.Type,
			Content:  item.Content,
			FileName: item.FileName,
		})
	}
	return messages, nil
}

// get performs a GET and returns a copy of the body of a 2xx response
func (c *APIClient) get(ctx context.Context, uri string) ([]byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(uri)
	req.Header.Set("Accept", mimeJSON)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("request failed: %w", err))
	}

	if statusCode := resp.StatusCode(); statusCode < 200 || statusCode >= 300 {
		return nil, domain.NewTransportError(fmt.Errorf("HTTP status: %d", statusCode))
	}

	return append([]byte(nil), resp.Body()...), nil
}

// decodeList accepts either a bare JSON array or the {code, message, data: {items}} envelope
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := sonic.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope types.APIResponse[types.ListData[T]]
	if err := sonic.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.Items, nil
}

// idString renders a JSON id that may be a string or a number
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// parseCreatedAt accepts RFC3339 timestamps; sessions created by the web UI
// use a millisecond epoch as id, which is used as a fallback
func parseCreatedAt(createdAt, id string) time.Time {
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(id, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms)
	}
	return time.Time{}
}
