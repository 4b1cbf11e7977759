// Package transport defines the interface for the remote-control surfaces.
//
// Transports (HTTP/WebSocket, gRPC health) run alongside the dialogue loop.
// They never drive the dialogue directly: remote text is pushed into a
// capture queue and heard on the next listen, like any other utterance.
package transport

import "context"

// Inbox accepts recognized text from a remote client.
type Inbox interface {
	// Push enqueues text without blocking.
	Push(text string) error

	// Pending returns the number of queued utterances.
	Pending() int
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts serving. It blocks until the context is cancelled.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
