//go:build integration

package mqtt

import (
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/sceneflow-core/internal/infrastructure/config"
)

// Integration tests against a live broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -count=1 -v ./internal/infrastructure/mqtt/...

func integrationConfig(clientID string) config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: clientID,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func integrationClient(t *testing.T, clientID string) *Client {
	t.Helper()
	client, err := Connect(integrationConfig(clientID))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// collectOne subscribes to pattern and delivers the first payload seen.
func collectOne(t *testing.T, client *Client, pattern string) <-chan string {
	t.Helper()

	received := make(chan string, 1)
	var once sync.Once
	err := client.Subscribe(pattern, 1, func(_ string, p []byte) error {
		once.Do(func() { received <- string(p) })
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(%s) error = %v", pattern, err)
	}

	// Give the broker a moment to register the subscription.
	time.Sleep(100 * time.Millisecond)
	return received
}

func awaitPayload(t *testing.T, received <-chan string, want string) {
	t.Helper()
	select {
	case msg := <-received:
		if msg != want {
			t.Errorf("received %q, want %q", msg, want)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for message")
	}
}

func TestIntegrationConnectLifecycle(t *testing.T) {
	client, err := Connect(integrationConfig("sceneflow-int-lifecycle"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestIntegrationSubscriptionTracking(t *testing.T) {
	client := integrationClient(t, "sceneflow-int-sub-track")

	topics := []string{
		"sceneflow/int/track/alpha",
		"sceneflow/int/track/bravo",
		"sceneflow/int/track/charlie",
	}
	for _, topic := range topics {
		if err := client.Subscribe(topic, 1, func(string, []byte) error { return nil }); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}

	if n := client.SubscriptionCount(); n != len(topics) {
		t.Errorf("SubscriptionCount() = %d, want %d", n, len(topics))
	}

	if err := client.Unsubscribe(topics[0]); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(topics[0]) {
		t.Errorf("HasSubscription(%s) = true after Unsubscribe", topics[0])
	}
	if n := client.SubscriptionCount(); n != len(topics)-1 {
		t.Errorf("SubscriptionCount() = %d, want %d", n, len(topics)-1)
	}
}

func TestIntegrationSceneEventRoundtrip(t *testing.T) {
	pub := NewEventPublisher(integrationClient(t, "sceneflow-int-pub"), 1)
	sub := integrationClient(t, "sceneflow-int-sub")

	received := collectOne(t, sub, Topics{}.AllSceneEvents())

	want := `{"runtime_id":7}`
	if err := pub.PublishSceneEvent("integration-scene", "loaded", []byte(want)); err != nil {
		t.Fatalf("PublishSceneEvent() error = %v", err)
	}

	awaitPayload(t, received, want)
}

func TestIntegrationBatchCompletedRoundtrip(t *testing.T) {
	pub := NewEventPublisher(integrationClient(t, "sceneflow-int-batch-pub"), 1)
	sub := integrationClient(t, "sceneflow-int-batch-sub")

	received := collectOne(t, sub, Topics{}.BatchCompleted())

	want := `{"loaded":["lobby"],"unloaded":["cinema"]}`
	if err := pub.PublishBatchCompleted([]byte(want)); err != nil {
		t.Fatalf("PublishBatchCompleted() error = %v", err)
	}

	awaitPayload(t, received, want)
}
