// Package stream consumes the newline-delimited JSON event stream emitted by
// the route-optimization solver and turns it into typed events.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
)

// EventType identifies the kind of event on the stream.
type EventType string

const (
	// EventProgress is an intermediate solver sample.
	EventProgress EventType = "progress"
	// EventCompleted carries the final result. Terminal.
	EventCompleted EventType = "completed"
	// EventError carries a solver reported failure. Terminal.
	EventError EventType = "error"
)

// Terminal reports whether an event of this type ends the stream.
func (t EventType) Terminal() bool {
	return t == EventCompleted || t == EventError
}

// WorkerID identifies the solver worker that produced a sample. The solver
// may encode it as a JSON string or number; both decode to the same text.
type WorkerID string

// UnmarshalJSON accepts a string or a number.
func (w *WorkerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = WorkerID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("workerId must be a string or number: %w", err)
	}
	*w = WorkerID(n.String())
	return nil
}

// ProgressData is the payload of a progress event.
type ProgressData struct {
	Iteration           int      `json:"iteration"`
	WorkerID            WorkerID `json:"workerId"`
	CandidateDistance   float64  `json:"candidateDistance"`
	BestDistance        float64  `json:"bestDistance"`
	AcceptedImprovement bool     `json:"acceptedImprovement"`
}

// Event is one decoded line of the stream. Exactly one of Progress, Result
// or Message is set, according to Type.
type Event struct {
	Type     EventType
	Progress *ProgressData
	Result   *model.Result
	Message  string
}

// wireEvent is the JSON shape of a stream line.
type wireEvent struct {
	Type  EventType       `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

// ParseEvent decodes one stream line. A whitespace-only line yields a nil
// event and a nil error. Any other line that is not a well formed event
// yields a *ProtocolError.
func ParseEvent(line string) (*Event, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	var w wireEvent
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return nil, newProtocolError(line, "malformed JSON", err)
	}

	switch w.Type {
	case EventProgress:
		if !hasData(w.Data) {
			return nil, newProtocolError(line, "progress event without data", nil)
		}
		var p ProgressData
		if err := json.Unmarshal(w.Data, &p); err != nil {
			return nil, newProtocolError(line, "invalid progress data", err)
		}
		return &Event{Type: EventProgress, Progress: &p}, nil

	case EventCompleted:
		if !hasData(w.Data) {
			return nil, newProtocolError(line, "completed event without data", nil)
		}
		var r model.Result
		if err := json.Unmarshal(w.Data, &r); err != nil {
			return nil, newProtocolError(line, "invalid completed data", err)
		}
		return &Event{Type: EventCompleted, Result: &r}, nil

	case EventError:
		msg := ""
		if w.Error != nil {
			msg = *w.Error
		}
		return &Event{Type: EventError, Message: msg}, nil

	case "":
		return nil, newProtocolError(line, "missing event type", nil)

	default:
		return nil, newProtocolError(line, "unknown event type "+strconv.Quote(string(w.Type)), nil)
	}
}

func hasData(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
