package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/IBM/sarama"
)

// Tracker emits best-effort analytics events. It satisfies
// bookings.ConversionTracker.
type Tracker interface {
	TrackConversion(bookingID, reference, date, timeSlot string, partySize int)
	Close() error
}

// conversionEvent is the wire format for a completed booking conversion.
type conversionEvent struct {
	Event      string    `json:"event"`
	BookingID  string    `json:"booking_id"`
	Reference  string    `json:"reference"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	PartySize  int       `json:"party_size"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaTracker publishes conversion events to the analytics topic.
type KafkaTracker struct {
	producer sarama.SyncProducer
	topic    string
	timeout  time.Duration
	log      *logger.Logger
}

// NewKafkaTracker creates a tracker sharing an existing sync producer.
func NewKafkaTracker(producer sarama.SyncProducer, topic string) *KafkaTracker {
	return &KafkaTracker{
		producer: producer,
		topic:    topic,
		timeout:  10 * time.Second,
		log:      logger.GetDefault(),
	}
}

// TrackConversion fires a booking-created event. Failures never reach the
// caller; a lost analytics event is not worth a failed booking.
func (t *KafkaTracker) TrackConversion(bookingID, reference, date, timeSlot string, partySize int) {
	event := conversionEvent{
		Event:      "booking_conversion",
		BookingID:  bookingID,
		Reference:  reference,
		Date:       date,
		Time:       timeSlot,
		PartySize:  partySize,
		OccurredAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			t.log.ErrorWithContext(ctx, "failed to marshal analytics event", err, nil)
			return
		}

		message := &sarama.ProducerMessage{
			Topic: t.topic,
			Key:   sarama.StringEncoder(bookingID),
			Value: sarama.ByteEncoder(payload),
		}

		if _, _, err := t.producer.SendMessage(message); err != nil {
			t.log.ErrorWithContext(ctx, "failed to publish analytics event", err, map[string]interface{}{
				"booking_id": bookingID,
			})
		}
	}()
}

// Close is a no-op; the shared producer is owned by the notification pipeline.
func (t *KafkaTracker) Close() error {
	return nil
}

// NopTracker drops all events, used when the pipeline is disabled.
type NopTracker struct{}

func NewNopTracker() *NopTracker { return &NopTracker{} }

func (NopTracker) TrackConversion(bookingID, reference, date, timeSlot string, partySize int) {}

func (NopTracker) Close() error { return nil }
