package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
)

// HealthChecker is anything that can report whether it is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HandleCheckHealth pings the database.
func HandleCheckHealth(c *fiber.Ctx, store HealthChecker) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := store.HealthCheck(ctx); err != nil {
		return response.ServiceUnavailable(c, fmt.Sprintf("database unreachable: %v", err))
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}
