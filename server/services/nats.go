package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/nats-io/nats.go"
)

// MessageSubject is the subject a stored message is published on.
func MessageSubject(receiverID int64) string {
	return fmt.Sprintf("messages.%d", receiverID)
}

type NATSService struct {
	nc *nats.Conn
}

func NewNATSService(natsURL string) (*NATSService, error) {
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	nc, err := nats.Connect(natsURL, nats.Name("maxogram-server"))
	if err != nil {
		return nil, fmt.Errorf("could not connect to NATS: %w", err)
	}

	return &NATSService{
		nc: nc,
	}, nil
}

// Notify publishes message to its receiver's subject.
func (s *NATSService) Notify(ctx context.Context, message api.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("could not marshal message: %w", err)
	}

	err = s.nc.Publish(MessageSubject(message.ReceiverID), data)
	if err != nil {
		return fmt.Errorf("could not publish message: %w", err)
	}

	return nil
}

func (s *NATSService) Close() {
	s.nc.Close()
}

// Discard is used when no NATS server is configured.
type Discard struct{}

func (Discard) Notify(context.Context, api.Message) error {
	return nil
}

func (Discard) Close() {}
