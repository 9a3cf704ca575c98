package outbox

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTopicFor(t *testing.T) {
	t.Parallel()

	w := &Worker{}
	cases := map[string]string{
		"booking.confirmed": "booking.events.v1",
		"booking.requested": "booking.events.v1",
		"listing.approved":  "listing.events.v1",
		"availability.held": "availability.events.v1",
		"standalone":        "standalone.events.v1",
	}
	for name, want := range cases {
		if got := w.topicFor(name); got != want {
			t.Errorf("topicFor(%s) = %s, want %s", name, got, want)
		}
	}

	prefixed := &Worker{TopicPrefix: "staging."}
	if got := prefixed.topicFor("booking.confirmed"); got != "staging.booking.events.v1" {
		t.Errorf("prefixed topic = %s", got)
	}
}

func TestFormatPayload(t *testing.T) {
	t.Parallel()

	occurred := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	w := &Worker{Source: "app://test"}
	doc := &EventDocument{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"booking_id":"bk-1"}`),
		OccurredAt: occurred,
		Aggregate:  "bk-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}

	payload, headers, err := w.formatPayload(doc)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if headers["content-type"] != "application/cloudevents+json" {
		t.Fatalf("content-type = %s", headers["content-type"])
	}
	if headers["traceparent"] != "00-abc-def-01" {
		t.Fatalf("trace header lost: %v", headers)
	}

	var evt map[string]any
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if evt["type"] != "booking.confirmed.v1" {
		t.Fatalf("type = %v", evt["type"])
	}
	if evt["source"] != "app://test" {
		t.Fatalf("source = %v", evt["source"])
	}
	if evt["specversion"] != "1.0" {
		t.Fatalf("specversion = %v", evt["specversion"])
	}
	data, ok := evt["data"].(map[string]any)
	if !ok || data["booking_id"] != "bk-1" {
		t.Fatalf("data = %v", evt["data"])
	}

	t.Run("bad payload reports an error", func(t *testing.T) {
		bad := &EventDocument{Name: "x", Payload: []byte("{")}
		if _, _, err := w.formatPayload(bad); err == nil {
			t.Fatalf("expected error for malformed payload")
		}
	})
}
