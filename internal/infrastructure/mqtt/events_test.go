package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
)

// ─── Topic Mapping ───────────────────────────────────────────────────────────

func TestSceneEventTopicMapping(t *testing.T) {
	tests := []struct {
		name  string
		scene string
		event string
		want  string
	}{
		{"loaded", "lobby", "loaded", "sceneflow/core/scene/lobby/loaded"},
		{"unloaded", "lobby", "unloaded", "sceneflow/core/scene/lobby/unloaded"},
		{"activated", "cinema", "activated", "sceneflow/core/scene/cinema/activated"},
		{"failed", "cinema", "failed", "sceneflow/core/scene/cinema/failed"},
		{"unknown event uses generic builder", "lobby", "warming", "sceneflow/core/scene/lobby/warming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sceneEventTopic(tt.scene, tt.event)
			if got != tt.want {
				t.Errorf("sceneEventTopic(%q, %q) = %q, want %q", tt.scene, tt.event, got, tt.want)
			}
		})
	}
}

// ─── Publishing ──────────────────────────────────────────────────────────────

func TestEventPublisherRequiresConnection(t *testing.T) {
	pub := NewEventPublisher(&Client{}, 1)

	if err := pub.PublishSceneEvent("lobby", "loaded", []byte(`{}`)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishSceneEvent() error = %v, want ErrNotConnected", err)
	}

	if err := pub.PublishBatchCompleted([]byte(`{}`)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishBatchCompleted() error = %v, want ErrNotConnected", err)
	}
}

// ─── Status Payloads ─────────────────────────────────────────────────────────

func TestStatusJSON(t *testing.T) {
	var got statusPayload
	if err := json.Unmarshal([]byte(statusJSON("offline", "sceneflow-core", "graceful_shutdown")), &got); err != nil {
		t.Fatalf("statusJSON produced invalid JSON: %v", err)
	}

	if got.Status != "offline" {
		t.Errorf("Status = %q, want %q", got.Status, "offline")
	}
	if got.ClientID != "sceneflow-core" {
		t.Errorf("ClientID = %q, want %q", got.ClientID, "sceneflow-core")
	}
	if got.Reason != "graceful_shutdown" {
		t.Errorf("Reason = %q, want %q", got.Reason, "graceful_shutdown")
	}
	if got.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
}

func TestStatusJSONOmitsEmptyReason(t *testing.T) {
	raw := statusJSON("online", "sceneflow-core", "")

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("statusJSON produced invalid JSON: %v", err)
	}
	if _, present := fields["reason"]; present {
		t.Errorf("online payload carries a reason field: %s", raw)
	}
}
