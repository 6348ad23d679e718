package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/mansidw/aakar-cli/internal/cli/client"
	"github.com/mansidw/aakar-cli/internal/config"
	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/infrastructure/blob"
	"github.com/mansidw/aakar-cli/internal/router"
	"github.com/mansidw/aakar-cli/internal/usecase"
	"github.com/mansidw/aakar-cli/pkg/logger"
)

// appOptions selects the optional parts of the wiring
type appOptions struct {
	// serveBlobs starts the local blob server when the memory backend is used
	serveBlobs bool
}

// app holds the wired components shared by the commands
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *client.APIClient
	allocator domain.ResourceAllocator
	// registry is set for the memory backend and gives access to payloads
	registry *blob.Registry
	server   *server.Hertz
	store    *usecase.SessionStore
	resolver domain.ArtifactResolver
	ctrl     *usecase.ConversationController
	logClose io.Closer
}

// newApp sets up logging and wires client, allocator, store, resolver and
// controller from cfg
func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	logClose, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := slog.Default()

	a := &app{cfg: cfg, logger: log, logClose: logClose}

	a.client, err = client.NewAPIClient(cfg.Backend.BaseURL, client.Options{
		DialTimeout: cfg.Backend.DialTimeout,
		Timeout:     cfg.Backend.Timeout,
		Logger:      log,
	})
	if err != nil {
		logClose.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	switch cfg.Blob.Backend {
	case "s3":
		s3 := cfg.Blob.S3
		a.allocator, err = blob.NewS3Allocator(blob.S3Config{
			Endpoint:      s3.Endpoint,
			Region:        s3.Region,
			AccessKey:     s3.AccessKey,
			SecretKey:     s3.SecretKey,
			Bucket:        s3.Bucket,
			UseSSL:        s3.UseSSL,
			PresignExpiry: s3.PresignExpiry,
		})
		if err != nil {
			logClose.Close()
			return nil, fmt.Errorf("failed to create s3 allocator: %w", err)
		}
	default:
		baseURL := ""
		if opts.serveBlobs && cfg.Blob.Serve {
			baseURL = "http://" + cfg.Blob.ListenAddr
		}
		a.registry = blob.NewRegistry(baseURL)
		a.allocator = a.registry
		if baseURL != "" {
			a.server = router.NewBlobServer(router.Options{
				ListenAddr:    cfg.Blob.ListenAddr,
				EnableMetrics: cfg.Observability.EnableMetrics,
				Logger:        log,
			}, a.registry, a.registry.Len)
		}
	}

	a.store = usecase.NewSessionStore(a.allocator, log)
	a.resolver = usecase.NewArtifactResolver(a.allocator, log)
	a.ctrl = usecase.NewConversationController(a.store, a.client, a.resolver, usecase.ControllerOptions{
		UserID:    cfg.User.ID,
		ProjectID: cfg.User.ProjectID,
		Source:    a.client,
		Logger:    log,
	})
	return a, nil
}

// start runs the blob server in the background, if any
func (a *app) start() {
	if a.server == nil {
		return
	}
	go func() {
		if err := a.server.Run(); err != nil {
			a.logger.Error("blob server stopped", "error", err)
		}
	}()
	a.logger.Info("blob server started", "addr", a.cfg.Blob.ListenAddr)
}

// shutdown stops the blob server and closes the log file. The controller is
// closed separately since the chat program owns its teardown.
func (a *app) shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("blob server shutdown: %w", err))
		}
	}
	if err := a.logClose.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
