package events

import (
	"context"
	"errors"
)

// Publisher delivers events to some audience: a broker, connected clients, a log.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout publishes to every non-nil publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
