package notifications

import (
	"context"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"
)

// Dispatcher enqueues notifications without ever blocking or failing the
// calling workflow: the publish happens on its own goroutine with a bounded
// wait, and failures only reach the log. It satisfies bookings.Notifier.
type Dispatcher struct {
	producer Producer
	timeout  time.Duration
	log      *logger.Logger
}

// NewDispatcher creates a fire-and-forget dispatcher around a producer.
// A nil producer yields a dispatcher that drops everything, used when the
// pipeline is disabled.
func NewDispatcher(producer Producer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		producer: producer,
		timeout:  timeout,
		log:      logger.GetDefault(),
	}
}

// Dispatch enqueues one notification and returns immediately.
func (d *Dispatcher) Dispatch(templateKey, recipientEmail, recipientName string, data map[string]interface{}) {
	if d.producer == nil {
		return
	}

	notification := NewNotification(templateKey, recipientEmail, recipientName, data)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.producer.Publish(ctx, notification); err != nil {
			d.log.LogNotificationFailure(ctx, templateKey, recipientEmail, err)
		}
	}()
}
