package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kalambet/lexis/internal/resource"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// resourceError writes err with the status matching its resource kind.
func resourceError(w http.ResponseWriter, err error) {
	kind := resource.KindOf(err)
	httpError(w, statusForKind(kind), kind.String(), "%v", err)
}

func statusForKind(kind resource.Kind) int {
	switch kind {
	case resource.KindNotFound:
		return http.StatusNotFound
	case resource.KindTimeout:
		return http.StatusGatewayTimeout
	case resource.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// resourceEvent is the wire form of one stream value.
type resourceEvent struct {
	State   string `json:"state"`
	Active  *bool  `json:"active,omitempty"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func toEvent[T any](r resource.Resource[T]) resourceEvent {
	ev := resourceEvent{State: r.State.String()}
	switch r.State {
	case resource.StateLoading:
		active := r.Active
		ev.Active = &active
	case resource.StateSuccess:
		ev.Value = r.Value
	case resource.StateError:
		ev.Error = r.Kind.String()
		ev.Message = r.Message
	}
	return ev
}

// streamResources writes every value of s as one JSON line.
func streamResources[T any](w http.ResponseWriter, s <-chan resource.Resource[T]) {
	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	enc := json.NewEncoder(w)
	for r := range s {
		if err := enc.Encode(toEvent(r)); err != nil {
			slog.Debug("client went away during stream", "error", err)
			// Drain so the producer can finish.
			for range s {
			}
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type eventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventWriter(w http.ResponseWriter) (*eventWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "api_error", "streaming not supported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &eventWriter{w: w, flusher: flusher}, true
}

func (e *eventWriter) send(event string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}
