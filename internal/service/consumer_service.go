package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-blueprint-be/internal/dto"
	"ai-blueprint-be/internal/pkg/logger"
	"ai-blueprint-be/internal/pkg/mailer"
	"ai-blueprint-be/pkg/events"
	pktNats "ai-blueprint-be/pkg/nats"
	"ai-blueprint-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ProgressDelivery pushes a progress event to connected live clients.
// Implemented by the websocket hub.
type ProgressDelivery interface {
	BroadcastProgress(requestId string, payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process progress bus and fans events out:
// every event goes to the websocket hub; terminal events additionally go
// to NATS for external systems and, when the submitter asked for it, to
// the mailer.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  ProgressDelivery
	emails    mailer.IEmailService
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery ProgressDelivery,
	emails mailer.IEmailService,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		emails:    emails,
		natsPub:   natsPub,
		logger:    sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event dto.ProgressEventMessage
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal progress event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads must not loop forever
		return
	}

	if cs.delivery != nil {
		cs.delivery.BroadcastProgress(event.RequestId, msg.Payload)
	}

	switch event.Status {
	case store.StatusComplete:
		cs.publishExternal(ctx, events.NewReportCompleted(event.RequestId, event.PersistFailed))
		cs.notify(&event, true)
	case store.StatusFailed:
		cs.publishExternal(ctx, events.NewReportFailed(event.RequestId, event.ErrorCode))
		cs.notify(&event, false)
	}

	msg.Ack()
}

func (cs *consumerService) publishExternal(ctx context.Context, event events.Event) {
	if cs.natsPub == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cs.natsPub.Publish(pubCtx, event); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to publish event to NATS", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func (cs *consumerService) notify(event *dto.ProgressEventMessage, completed bool) {
	if cs.emails == nil || event.NotifyEmail == "" {
		return
	}

	var err error
	if completed {
		err = cs.emails.SendReportReady(event.NotifyEmail, event.FullName, event.RequestId)
	} else {
		err = cs.emails.SendReportFailed(event.NotifyEmail, event.FullName, event.ErrorCode)
	}
	if err != nil {
		cs.logger.Warn("ConsumerService", "Failed to send notification email", map[string]interface{}{
			"request_id": event.RequestId,
			"error":      err.Error(),
		})
	}
}
