package agent

import (
	"context"
	"encoding/json"

	"browser-connector-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topics for the cross-context command/event bus. Browser-side glue publishes
// here; the tracker consumes, decoupled from recording state.
const (
	TopicNavigation   = "NAVIGATION_EVENTS"
	TopicTargetClosed = "TARGET_CLOSED"
)

// NavigationMessage mirrors the navigation/activation callbacks coming from
// the host platform.
type NavigationMessage struct {
	TargetID string `json:"target_id"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// NavigationPublisher pushes navigation events onto the bus.
type NavigationPublisher struct {
	pubSub *gochannel.GoChannel
}

func NewNavigationPublisher(pubSub *gochannel.GoChannel) *NavigationPublisher {
	return &NavigationPublisher{pubSub: pubSub}
}

func (p *NavigationPublisher) PublishNavigation(targetID, url, source string) error {
	payload, err := json.Marshal(NavigationMessage{TargetID: targetID, URL: url, Source: source})
	if err != nil {
		return err
	}
	return p.pubSub.Publish(TopicNavigation, message.NewMessage(watermill.NewUUID(), payload))
}

func (p *NavigationPublisher) PublishTargetClosed(targetID string) error {
	payload, err := json.Marshal(NavigationMessage{TargetID: targetID})
	if err != nil {
		return err
	}
	return p.pubSub.Publish(TopicTargetClosed, message.NewMessage(watermill.NewUUID(), payload))
}

// NavigationConsumer feeds bus events into the URL tracker.
type NavigationConsumer struct {
	pubSub  *gochannel.GoChannel
	tracker *Tracker
	logger  logger.ILogger
}

func NewNavigationConsumer(pubSub *gochannel.GoChannel, tracker *Tracker, log logger.ILogger) *NavigationConsumer {
	return &NavigationConsumer{pubSub: pubSub, tracker: tracker, logger: log}
}

// Consume subscribes to both topics and dispatches until ctx is done.
func (c *NavigationConsumer) Consume(ctx context.Context) error {
	navigations, err := c.pubSub.Subscribe(ctx, TopicNavigation)
	if err != nil {
		return err
	}
	closures, err := c.pubSub.Subscribe(ctx, TopicTargetClosed)
	if err != nil {
		return err
	}

	go func() {
		for msg := range navigations {
			c.handleNavigation(msg)
		}
	}()
	go func() {
		for msg := range closures {
			c.handleClosed(msg)
		}
	}()
	return nil
}

func (c *NavigationConsumer) handleNavigation(msg *message.Message) {
	var payload NavigationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Warn("NavigationConsumer", "Dropping malformed navigation message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}
	c.tracker.RecordURL(payload.TargetID, payload.URL, payload.Source)
	msg.Ack()
}

func (c *NavigationConsumer) handleClosed(msg *message.Message) {
	var payload NavigationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		msg.Ack()
		return
	}
	c.tracker.Forget(payload.TargetID)
	msg.Ack()
}
