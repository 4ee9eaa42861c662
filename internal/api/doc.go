// Package api implements the HTTP REST API and WebSocket server for SceneFlow Core.
//
// This package provides:
//   - REST endpoints for scene load/unload/activate operations
//   - REST endpoints for batch definition CRUD and execution
//   - WebSocket hub for real-time scene lifecycle broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between editor/operator clients and the scene
// coordinator. Joined operations (POST /scenes/load and friends) block until
// the coordinator's fan-in completes and return per-scene results; adding
// ?async=true switches to the fire-and-forget forms and returns 202. Scene
// lifecycle events reach clients through the WebSocket hub, which is wired
// into the coordinator as its broadcaster.
//
// # Security
//
// Authentication uses JWT tokens (placeholder dev credentials until a real
// user store lands). WebSocket connections use single-use tickets to prevent
// token leakage in URLs.
//
// # Graceful Degradation
//
// The server operates without MQTT and InfluxDB. Scene operations still run;
// only bus events and operation timings are skipped, and /system/status
// reports the affected components as disabled.
package api
