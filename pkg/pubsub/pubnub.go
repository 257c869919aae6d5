package pubsub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pubnub "github.com/pubnub/go/v7"
	"github.com/protocaas/protocaas/pkg/domain"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

const DefaultPubnubOrigin = "https://ps.pndsn.com"

var ErrPublishFailed = errors.New("publish failed")

type PubnubConfig struct {
	PublishKey   string
	SubscribeKey string

	// UUID of the publisher.
	UUID string

	// Origin of the API, as URL. Default is DefaultPubnubOrigin.
	Origin string

	Client *http.Client
}

// Pubnub publishes events through PubNub.
type Pubnub struct {
	subscribeKey string
	pn           *pubnub.PubNub
}

func NewPubnub(c PubnubConfig) *Pubnub {
	origin := c.Origin
	if origin == "" {
		origin = DefaultPubnubOrigin
	}
	secure := true
	if o, ok := strings.CutPrefix(origin, "http://"); ok {
		origin, secure = o, false
	} else {
		origin = strings.TrimPrefix(origin, "https://")
	}

	uuid := c.UUID
	if uuid == "" {
		uuid = "protocaas"
	}
	config := pubnub.NewConfigWithUserId(pubnub.UserId(uuid))
	config.PublishKey = c.PublishKey
	config.SubscribeKey = c.SubscribeKey
	config.Origin = strings.TrimSuffix(origin, "/")
	config.Secure = secure

	pn := pubnub.NewPubNub(config)
	if c.Client != nil {
		pn.SetClient(c.Client)
	}
	return &Pubnub{subscribeKey: c.SubscribeKey, pn: pn}
}

func (p *Pubnub) Name() string {
	return "pubnub"
}

func (p *Pubnub) Publish(ctx context.Context, event domain.JobEvent) error {
	_, status, err := p.pn.PublishWithContext(ctx).
		Channel(event.Channel()).
		Message(newMessage(event)).
		Execute()
	if err != nil {
		return xe.Wrap(fmt.Errorf("%w (pubnub %d): %w", ErrPublishFailed, status.StatusCode, err))
	}
	return nil
}

func (p *Pubnub) Subscription(computeResourceId string) Subscription {
	return Subscription{
		Backend:            p.Name(),
		Channel:            computeResourceId,
		User:               computeResourceId,
		PubnubSubscribeKey: p.subscribeKey,
	}
}

// Close stops background workers of the client.
func (p *Pubnub) Close() error {
	p.pn.Destroy()
	return nil
}
