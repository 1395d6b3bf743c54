package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-booking/internal/updates"
)

// UpdatesHandler streams booking changes as server-sent events.
type UpdatesHandler struct {
	Stream *updates.Stream
}

func NewUpdatesHandler(s *updates.Stream) *UpdatesHandler { return &UpdatesHandler{Stream: s} }

// Subscribe handles GET /v1/flight-updates.  The stream runs until the
// client disconnects.
func (h *UpdatesHandler) Subscribe(c echo.Context) error {
	res := c.Response()
	hdr := res.Header()
	hdr.Set(echo.HeaderContentType, "text/event-stream")
	hdr.Set("Cache-Control", "no-cache, no-transform")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	// once headers are out echo's error handler leaves the response alone
	return h.Stream.Serve(c.Request().Context(), res, res.Flush)
}
