// Package metrics provides InfluxDB connectivity for SceneFlow Core.
//
// It wraps the official influxdb-client-go v2 library with SceneFlow-specific
// patterns for connection management, operation timing writes, and health
// monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Scene load/unload/activate timings
//   - Batch completion timings
//   - Scene residency samples
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "sceneflow",
//	    Bucket: "metrics",
//	}
//
//	client, err := metrics.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record an operation timing
//	client.RecordOperation("load", "cinema", 142.7, true)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for frequent operation recordings.
package metrics
