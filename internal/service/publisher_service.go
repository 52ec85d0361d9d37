package service

import (
	"context"
	"encoding/json"

	"browser-connector-be/internal/dto"
	"browser-connector-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishRecordingSaved(ctx context.Context, msg dto.RecordingSavedMessage) error
}

// IEventPublisher mirrors domain events onto the capture event stream.
// Satisfied by the NATS publisher; services tolerate a nil value when no bus
// is reachable.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishRecordingSaved(ctx context.Context, msg dto.RecordingSavedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ps.pubSub.Publish(ps.topicName, message.NewMessage(watermill.NewUUID(), payload))
}
