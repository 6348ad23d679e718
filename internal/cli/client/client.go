package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/mansidw/aakar-cli/internal/cli/types"
	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/pkg/metrics"
)

// acceptReportTypes lists every content type the classifier understands
const acceptReportTypes = mimePDF + ", " + mimeDOCX + ", " + mimeHTML + ", " + mimeMarkdown + ", " + mimeJSON

// Options configures an APIClient
type Options struct {
	// DialTimeout bounds connection setup (default 10s)
	DialTimeout time.Duration
	// Timeout bounds a whole request; zero means only ctx deadlines apply
	Timeout time.Duration
	Logger  *slog.Logger
}

// APIClient wraps Hertz Client for HTTP communication with the report backend
type APIClient struct {
	client  *client.Client
	server  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(server string, opts Options) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c, err := client.NewClient(
		client.WithDialTimeout(opts.DialTimeout),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client:  c,
		server:  normalizedServer,
		timeout: opts.Timeout,
		logger:  opts.Logger.With("component", "report_client"),
	}, nil
}

// Server returns the normalized backend base URL
func (c *APIClient) Server() string {
	return c.server
}

// normalizeServerURL normalizes server URL to ensure it has a scheme and no trailing slash
func normalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, strings.TrimRight(u.Path, "/")), nil
}

// GenerateReport sends one report request and classifies the response by its
// declared content type. It never returns an error: failures come back as
// entity.ErrorResult with a user-safe message.
func (c *APIClient) GenerateReport(ctx context.Context, in domain.ReportRequest) entity.Result {
	if strings.TrimSpace(in.Query) == "" {
		return domain.ToErrorResult(domain.NewValidationError(domain.MessageValidation))
	}

	format := in.Format
	if format == "" {
		format = entity.FormatPDF
	}

	bodyBytes, err := sonic.Marshal(types.GenerateReportRequest{
		ProjectID: in.ProjectID,
		UserID:    in.UserID,
		Query:     in.Query,
		Format:    string(format),
	})
	if err != nil {
		return c.failure(ctx, time.Now(), domain.NewInternalError(fmt.Errorf("failed to marshal request: %w", err)))
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointReportsGenerate)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", acceptReportTypes)
	req.SetBody(bodyBytes)

	start := time.Now()
	if err := c.do(ctx, req, resp); err != nil {
		return c.failure(ctx, start, domain.NewTransportError(fmt.Errorf("request failed: %w", err)))
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return c.failure(ctx, start, domain.NewTransportError(fmt.Errorf("report generation failed with HTTP status: %d", statusCode)))
	}

	contentType := string(resp.Header.ContentType())
	disposition := string(resp.Header.Peek("Content-Disposition"))

	// resp is returned to the pool on exit, so the payload must be copied
	body := append([]byte(nil), resp.Body()...)

	result := ClassifyResponse(contentType, disposition, body)
	metrics.ObserveReport(string(result.Kind()), time.Since(start))

	if errResult, ok := result.(entity.ErrorResult); ok {
		c.logger.WarnContext(ctx, "report response not usable",
			"content_type", contentType,
			"code", errResult.Code,
			"requested_format", format,
		)
	} else {
		c.logger.DebugContext(ctx, "report generated",
			"kind", result.Kind(),
			"content_type", contentType,
			"bytes", len(body),
			"requested_format", format,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}

	return result
}

// failure logs err and converts it into the ErrorResult shown to the user
func (c *APIClient) failure(ctx context.Context, start time.Time, err error) entity.Result {
	c.logger.ErrorContext(ctx, "report generation failed", "error", err)
	result := domain.ToErrorResult(err)
	metrics.ObserveReport(string(result.Kind()), time.Since(start))
	return result
}

// do sends req honoring both the client timeout and any ctx deadline,
// whichever comes first
func (c *APIClient) do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, hasDeadline := ctx.Deadline()
	if c.timeout > 0 {
		if timeoutDeadline := time.Now().Add(c.timeout); !hasDeadline || timeoutDeadline.Before(deadline) {
			deadline, hasDeadline = timeoutDeadline, true
		}
	}
	if hasDeadline {
		return c.client.DoDeadline(ctx, req, resp, deadline)
	}
	return c.client.Do(ctx, req, resp)
}
