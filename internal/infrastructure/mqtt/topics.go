package mqtt

import "fmt"

// Topic prefixes for the SceneFlow MQTT namespace.
//
// All core topics use the scheme: sceneflow/core/{subject}/{id}/{event}
const (
	// TopicPrefixCore is the base for all core topics.
	TopicPrefixCore = "sceneflow/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sceneflow/system"
)

// Topics provides builders for SceneFlow MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	loadedTopic := topics.SceneLoaded("cinema")
//	// Returns: "sceneflow/core/scene/cinema/loaded"
type Topics struct{}

// =============================================================================
// Scene Topics
// =============================================================================

// SceneEvent returns the topic for an arbitrary scene lifecycle event.
//
// Example: sceneflow/core/scene/cinema/loaded
func (Topics) SceneEvent(scene, event string) string {
	return fmt.Sprintf("%s/scene/%s/%s", TopicPrefixCore, scene, event)
}

// SceneLoaded returns the topic for scene load completion events.
//
// Example: sceneflow/core/scene/cinema/loaded
func (t Topics) SceneLoaded(scene string) string {
	return t.SceneEvent(scene, "loaded")
}

// SceneUnloaded returns the topic for scene unload completion events.
//
// Example: sceneflow/core/scene/cinema/unloaded
func (t Topics) SceneUnloaded(scene string) string {
	return t.SceneEvent(scene, "unloaded")
}

// SceneActivated returns the topic for active scene change events.
//
// Example: sceneflow/core/scene/cinema/activated
func (t Topics) SceneActivated(scene string) string {
	return t.SceneEvent(scene, "activated")
}

// SceneFailed returns the topic for scene operation failures.
//
// Example: sceneflow/core/scene/cinema/failed
func (t Topics) SceneFailed(scene string) string {
	return t.SceneEvent(scene, "failed")
}

// =============================================================================
// Batch Topics
// =============================================================================

// BatchCompleted returns the topic for batch completion events.
//
// Example: sceneflow/core/batch/completed
func (Topics) BatchCompleted() string {
	return fmt.Sprintf("%s/batch/completed", TopicPrefixCore)
}

// =============================================================================
// Core Topics
// =============================================================================

// CoreEvent returns the topic for general coordinator events.
//
// Example: sceneflow/core/event/recalc_completed
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic.
// The LWT and graceful shutdown payloads are published here.
//
// Example: sceneflow/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: sceneflow/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllSceneEvents returns a pattern matching every scene lifecycle event.
//
// Pattern: sceneflow/core/scene/+/+
func (Topics) AllSceneEvents() string {
	return fmt.Sprintf("%s/scene/+/+", TopicPrefixCore)
}

// AllCoreEvents returns a pattern matching all core events.
//
// Pattern: sceneflow/core/event/+
func (Topics) AllCoreEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixCore)
}

// AllTopics returns a pattern matching all SceneFlow topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: sceneflow/#
func (Topics) AllTopics() string {
	return "sceneflow/#"
}
