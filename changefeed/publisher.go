// Package changefeed publishes a Document's committed mutations over a
// ZeroMQ PUB socket as JSON-encoded ChangeEvent messages, for any number of
// subscribers (a logging sidecar, a replication worker, a dashboard) that
// don't need the full liveview protocol.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// ChangeEvent describes one committed cell mutation.
type ChangeEvent struct {
	Ref     string `json:"ref"`
	Display string `json:"display"`
	Kind    string `json:"kind"` // "set" | "clear"
}

// Publisher owns one bound PUB socket.
type Publisher struct {
	sock zmq4.Socket
}

// NewPublisher binds a PUB socket at transport://addr:port (e.g.
// "tcp", "0.0.0.0", 5556) and returns a Publisher ready to Publish on it.
func NewPublisher(transport, addr string, port int) (*Publisher, error) {
	sock := zmq4.NewPub(context.Background())
	bindAddr := fmt.Sprintf("%s://%s:%d", transport, addr, port)
	if err := sock.Listen(bindAddr); err != nil {
		return nil, fmt.Errorf("changefeed: failed to bind to %s: %w", bindAddr, err)
	}
	return &Publisher{sock: sock}, nil
}

// Publish encodes event as JSON and sends it as a single-frame message to
// every connected subscriber.
func (p *Publisher) Publish(event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sock.Send(zmq4.NewMsgFrom(payload))
}

// Close releases the underlying socket.
func (p *Publisher) Close() error {
	return p.sock.Close()
}
