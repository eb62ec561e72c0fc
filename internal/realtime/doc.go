// Package realtime provides the live connection layer of the assistant:
// WebSocket session handling, message routing and the one-way streaming
// delivery path.
//
// The package implements:
//   - Session: owns one WebSocket connection, runs the receive loop and
//     delivers outbound envelopes in order
//   - Pipeline: wraps the ResponseGenerator capability and measures timing
//   - Publisher: unidirectional SSE event stream, independent of sessions
//   - Service: wires the registry, pipeline and upgrader together
//
// Key behaviors:
//   - Per-session ordering: inbound user messages are processed one at a
//     time in arrival order; each gets its own typing(true)/typing(false)
//     pair before the ai_response envelope
//   - A bad message never terminates the session; only transport failures do
//   - Teardown unregisters from the connection registry exactly once
package realtime
