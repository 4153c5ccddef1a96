package service

import (
	"encoding/json"

	"ai-blueprint-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	PublishProgress(event *dto.ProgressEventMessage) error
}

// publisherService pushes progress events onto the in-process bus. The
// pipeline does not care who listens; the consumer side fans out to the
// websocket hub, the notifier and NATS.
type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) PublishProgress(event *dto.ProgressEventMessage) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.publisher.Publish(ps.topicName, msg)
}
