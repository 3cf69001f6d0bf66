package messaging

import (
	"context"
	"errors"
	"testing"
)

func TestNewFromDriverUnknown(t *testing.T) {
	_, err := NewFromDriver(context.Background(), "rabbitmq", FactoryOptions{})

	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("got error %v, want %v", err, ErrUnknownDriver)
	}
}

func TestNewFromDriverMissingConfig(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		want   error
	}{
		{name: "nsq without producer addr", driver: DriverNSQ, want: ErrNSQProducerAddrRequired},
		{name: "kafka without brokers", driver: DriverKafka, want: ErrKafkaBrokersRequired},
		{name: "pubsub without project id", driver: DriverGooglePubSub, want: ErrPubSubProjectIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromDriver(context.Background(), tt.driver, FactoryOptions{})

			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
		})
	}
}
