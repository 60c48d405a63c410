package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"go.uber.org/zap"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
	logger        *zap.Logger
}

func NewAPIServer(listenAddress string, logger *zap.Logger) *APIServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "SmartCampus API",
			ErrorHandler: errorHandler(logger),
		}),
		listenAddress: listenAddress,
		logger:        logger,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most grace.
func (s *APIServer) Run(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API Server", zap.String("address", s.listenAddress))
		errCh <- s.app.Listen(s.listenAddress)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API Server")
	if err := s.app.ShutdownWithTimeout(grace); err != nil {
		return err
	}
	return <-errCh
}

// errorHandler renders errors that escaped a handler in the response envelope.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Error(c, fe.Code, fe.Message, "HTTP_ERROR")
		}
		logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return response.InternalServerError(c, "Internal server error")
	}
}
