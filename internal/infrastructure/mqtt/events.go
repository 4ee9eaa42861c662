package mqtt

// EventPublisher maps coordinator events onto the SceneFlow topic scheme
// and publishes them through a connected Client. It implements the
// coordinator's EventPublisher interface, keeping topic knowledge in this
// package rather than in the coordinator core.
type EventPublisher struct {
	client *Client
	qos    byte
}

// NewEventPublisher wraps a client with the coordinator event mapping.
// The QoS applies to every event published through it.
func NewEventPublisher(client *Client, qos byte) *EventPublisher {
	return &EventPublisher{client: client, qos: qos}
}

// PublishSceneEvent publishes one scene lifecycle event on its per-scene
// topic. Events are not retained: consumers that join late query the API
// for current state instead of replaying the bus.
func (p *EventPublisher) PublishSceneEvent(scene, event string, payload []byte) error {
	return p.client.Publish(sceneEventTopic(scene, event), payload, p.qos, false)
}

// PublishBatchCompleted publishes a batch completion summary on the shared
// batch topic. The payload carries the unload/load sets, so consumers
// filter on content rather than topic.
func (p *EventPublisher) PublishBatchCompleted(payload []byte) error {
	return p.client.Publish(Topics{}.BatchCompleted(), payload, p.qos, false)
}

// sceneEventTopic resolves a lifecycle event name to its topic. Unknown
// event names fall through to the generic builder so new events reach the
// bus without a mapping change here.
func sceneEventTopic(scene, event string) string {
	var t Topics
	switch event {
	case "loaded":
		return t.SceneLoaded(scene)
	case "unloaded":
		return t.SceneUnloaded(scene)
	case "activated":
		return t.SceneActivated(scene)
	case "failed":
		return t.SceneFailed(scene)
	default:
		return t.SceneEvent(scene, event)
	}
}
