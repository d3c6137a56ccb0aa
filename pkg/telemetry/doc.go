// Package telemetry wires OpenTelemetry tracing for rpcgate services.
//
// Spans are exported with the stdout exporter, which suits local development
// and log-shipping setups. The logging stage opens one span per procedure call
// through Tracer.
package telemetry
