// Package logging is the slog wrapper every SceneFlow subsystem logs
// through.
//
// Records carry the service name and build version by default, encode as
// json (production) or text (development), and filter by the level set
// in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// The composition root tags each subsystem with WithComponent, so a
// record can always be traced to the coordinator, the stage, the mqtt
// client, and so on:
//
//	coord.SetLogger(log.WithComponent("coordinator"))
//
// Never log credentials or tokens; truncate anything sensitive before it
// reaches a field.
package logging
