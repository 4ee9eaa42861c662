package metrics

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordOperation writes the timing of a coordinator operation.
//
// This is the primary method for recording scene lifecycle timings.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - op: The operation kind (e.g., "load", "unload", "activate", "batch")
//   - scene: The scene or batch name the operation acted on
//   - durationMS: Wall-clock duration of the operation in milliseconds
//   - success: Whether the operation completed without error
//
// Example:
//
//	client.RecordOperation("load", "cinema", 142.7, true)
func (c *Client) RecordOperation(op string, scene string, durationMS float64, success bool) {
	if !c.IsConnected() {
		return
	}

	status := "ok"
	if !success {
		status = "error"
	}

	point := write.NewPoint(
		"scene_operations",
		map[string]string{
			"op":     op,
			"scene":  scene,
			"status": status,
		},
		map[string]interface{}{
			"duration_ms": durationMS,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordResidency writes the current number of resident scenes.
//
// Sampled periodically so dashboards can chart memory pressure trends
// alongside operation timings.
func (c *Client) RecordResidency(loaded int, active string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"scene_residency",
		map[string]string{
			"active": active,
		},
		map[string]interface{}{
			"loaded": loaded,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
