package analytics

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/services/activity"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"go.uber.org/zap"
)

// IntentCounter aggregates a user's chat turns per intent.
type IntentCounter interface {
	IntentCounts(ctx context.Context, userID uint) ([]activity.IntentCount, error)
}

// AnalyticsHandler handles analytics and reporting requests
type AnalyticsHandler struct {
	counter IntentCounter
	logger  *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(counter IntentCounter, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{counter: counter, logger: logger}
}

// IntentUsage is the response of GET /api/v1/analytics/me/intents
type IntentUsage struct {
	Total   int64                  `json:"total"`
	Intents []activity.IntentCount `json:"intents"`
}

// GetMyIntents handles GET /api/v1/analytics/me/intents
func (h *AnalyticsHandler) GetMyIntents(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	counts, err := h.counter.IntentCounts(c.UserContext(), userID)
	if err != nil {
		h.logger.Error("failed to count intents", zap.Uint("user_id", userID), zap.Error(err))
		return response.InternalServerError(c, "Failed to fetch intent usage")
	}

	usage := IntentUsage{Intents: counts}
	if usage.Intents == nil {
		usage.Intents = []activity.IntentCount{}
	}
	for _, ic := range counts {
		usage.Total += ic.Count
	}
	return response.Success(c, usage)
}
