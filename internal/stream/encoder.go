package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode serializes a message into a Server-Sent-Events block:
//
//	event: <name>\n        (only when the message has an event name)
//	data: <json>\n
//	\n
//
// The data object is the message payload with the status folded in, so a
// progress message {status: task_done, task: analyze} arrives as one flat
// JSON object the way browser EventSource consumers expect.
func Encode(m *Message) ([]byte, error) {
	data := make(map[string]any, len(m.Payload)+1)
	for k, v := range m.Payload {
		data[k] = v
	}
	if m.Status != "" {
		data["status"] = m.Status
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode stream message: %w", err)
	}

	var buf bytes.Buffer
	if m.Event != "" {
		fmt.Fprintf(&buf, "event: %s\n", m.Event)
	}
	fmt.Fprintf(&buf, "data: %s\n\n", body)
	return buf.Bytes(), nil
}
