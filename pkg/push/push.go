package push

import "context"

// Message is one best-effort push delivery to a single device token.
type Message struct {
	Token     string
	Title     string
	Body      string
	Data      map[string]interface{}
	Badge     int
	Priority  string
	Sound     string
	ChannelID string
}

// Provider submits a message to an external push relay. Delivery is
// one-shot: providers report the relay's verdict and never retry.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}
