package chat

import (
	"bufio"
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/services/chat"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"github.com/sahilchouksey/smart-campus-api/utils/sse"
	"go.uber.org/zap"
)

func setSSEHeaders(c *fiber.Ctx) {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no") // Disable nginx buffering
}

// streamTurn submits synchronously so rejections are plain JSON errors,
// then streams the typing, message and idle events of the turn.
func (h *ChatHandler) streamTurn(c *fiber.Ctx, conv *chat.Conversation, text string, turn turnContext) error {
	user, err := conv.Submit(text)
	if user == nil {
		return rejectSubmit(c, err)
	}

	setSSEHeaders(c)
	c.Status(fiber.StatusOK)

	// The fiber context is not valid inside the stream writer.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		_ = sse.SendMessage(w, user)
		_ = sse.SendTyping(w)

		started := time.Now()
		reply, err := conv.Resolve(context.Background())
		if reply == nil {
			if err == nil {
				err = chat.ErrInvalidState
			}
			h.logger.Error("chat stream resolve failed", zap.Error(err))
			_ = sse.SendError(w, "RESOLVE_FAILED", err)
			return
		}
		if err != nil {
			h.logger.Warn("chat reply unavailable", zap.Uint("user_id", turn.userID), zap.Error(err))
		}
		h.recordTurn(turn, reply, time.Since(started))

		_ = sse.SendMessage(w, reply)
		_ = sse.SendIdle(w, errors.Is(err, chat.ErrReplyUnavailable))
	})
	return nil
}

// Stream handles GET /api/v1/chat/stream: the current snapshot, then one
// event per transition until the conversation closes or the client leaves.
func (h *ChatHandler) Stream(c *fiber.Ctx) error {
	conv, ok := h.conversation(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	setSSEHeaders(c)
	c.Status(fiber.StatusOK)

	// Subscribe inside the writer so a stream that never starts holds no
	// subscription.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		updates, cancel := conv.Subscribe(16)
		defer cancel()
		if err := sse.SendSnapshot(w, chat.Update{Snapshot: conv.Snapshot()}); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case update, ok := <-updates:
				if !ok {
					_ = sse.SendClosed(w, "session ended")
					return
				}
				if err := sse.SendSnapshot(w, update); err != nil {
					return
				}
			case <-ticker.C:
				// A failed write means the client has gone away.
				if err := sse.SendKeepAlive(w); err != nil {
					return
				}
			}
		}
	})
	return nil
}
