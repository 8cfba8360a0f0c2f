package predict

import (
	"bufio"
	"time"

	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/focusmonitor/engagement-api/utils/sse"
	"github.com/gofiber/fiber/v2"
)

// keepAliveInterval is how often an idle stream emits a comment line so
// intermediaries do not close the connection.
const keepAliveInterval = 15 * time.Second

// Stream pushes every new prediction to the client over Server-Sent
// Events. Each connection gets its own bounded buffer; a client that
// cannot keep up loses its oldest undelivered events rather than stalling
// the prediction path.
func (h *PredictHandler) Stream(c *fiber.Ctx) error {
	if _, ok := middleware.GetUserID(c); !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no") // Disable nginx buffering

	events := h.broker.Subscribe()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// The Fiber context is not valid inside this goroutine; a
		// failed write is the only disconnect signal we get.
		defer h.broker.Unsubscribe(events)

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := sse.SendPrediction(w, event); err != nil {
					return
				}
			case <-keepAlive.C:
				if err := sse.SendKeepAlive(w); err != nil {
					return
				}
			}
		}
	})

	return nil
}
