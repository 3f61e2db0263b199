// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/vinayvp/portfolio/internal/cms"
	"codeberg.org/vinayvp/portfolio/internal/sse"
)

// heartbeatInterval keeps idle connections open through proxies.
const heartbeatInterval = 30 * time.Second

// Events streams content-updated events so readers can refetch what an
// admin just changed. ?section= limits the stream to one section.
func (h *Handlers) Events(c echo.Context) error {
	ctx := c.Request().Context()

	topic := c.QueryParam("section")
	if topic != "" && topic != "profile" {
		if _, err := cms.ParseSection(topic); err != nil {
			return jsonError(c, http.StatusNotFound, "unknown-section")
		}
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	res.WriteHeader(http.StatusOK)

	ch := h.events.Register(topic)
	defer h.events.Unregister(topic, ch)

	if _, err := res.Write([]byte(sse.FormatEvent("connected", "ok"))); err != nil {
		return nil
	}
	res.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := res.Write([]byte(sse.Heartbeat)); err != nil {
				return nil // Client disconnected
			}
			res.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := res.Write([]byte(msg)); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// publish notifies subscribers that section changed.
func (h *Handlers) publish(section string) {
	h.events.Publish(section, sse.FormatContentUpdated(section, time.Now()))
}
