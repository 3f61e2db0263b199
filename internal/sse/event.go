// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContentUpdatedEvent is the name of the event sent after an edit.
const ContentUpdatedEvent = "content-updated"

// FormatEvent formats a message as an SSE event with optional event name.
// Multiline content is properly prefixed with "data:".
func FormatEvent(eventName, data string) string {
	var sb strings.Builder

	if eventName != "" {
		sb.WriteString(fmt.Sprintf("event: %s\n", eventName))
	}

	for line := range strings.SplitSeq(data, "\n") {
		sb.WriteString(fmt.Sprintf("data: %s\n", line))
	}

	sb.WriteString("\n") // Empty line marks end of event
	return sb.String()
}

// ContentUpdate is the payload of a content-updated event.
type ContentUpdate struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Section   string    `json:"section"`
}

// FormatContentUpdated formats the event that tells readers to refetch section.
func FormatContentUpdated(section string, at time.Time) string {
	data, _ := json.Marshal(ContentUpdate{Section: section, UpdatedAt: at.UTC()})
	return FormatEvent(ContentUpdatedEvent, string(data))
}

// Heartbeat is an SSE comment that keeps the connection alive.
// Comments (lines starting with :) are ignored by SSE clients.
const Heartbeat = ": heartbeat\n\n"
