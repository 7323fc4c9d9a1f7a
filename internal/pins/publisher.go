package pins

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pawshearts/internal/domain"
)

// Publisher posts a pin to Pinterest and returns the remote id and URL.
type Publisher interface {
	Publish(ctx context.Context, pin domain.ScheduledPin) (remoteID, url string, err error)
}

// LogPublisher stands in for Pinterest when no access token is configured.
// It logs the pin and returns mock identifiers.
type LogPublisher struct {
	Logger zerolog.Logger
	Now    func() time.Time
}

func (p LogPublisher) Publish(ctx context.Context, pin domain.ScheduledPin) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	stamp := now().UnixMilli()
	remoteID := fmt.Sprintf("mock-pin-%d", stamp)
	url := fmt.Sprintf("https://pinterest.com/pin/mock-%d", stamp)
	p.Logger.Info().
		Str("pin_id", pin.ID).
		Str("product", pin.ProductTitle).
		Str("remote_id", remoteID).
		Msg("pinterest publishing disabled, pin logged only")
	return remoteID, url, nil
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, pin domain.ScheduledPin) (string, string, error)

func (f PublisherFunc) Publish(ctx context.Context, pin domain.ScheduledPin) (string, string, error) {
	return f(ctx, pin)
}
