package reconfirm

import (
	"context"
	"log"
	"time"
)

// JobProcessor runs the reconfirmation expiry sweep on a timer. The cron
// endpoint can trigger the same sweep manually; both paths are safe to
// overlap because the sweep only matches still-pending expired rows.
type JobProcessor struct {
	service  Service
	interval time.Duration
	done     chan struct{}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, interval time.Duration) *JobProcessor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &JobProcessor{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start starts the background sweep loop
func (jp *JobProcessor) Start(ctx context.Context) {
	log.Printf("Starting reconfirmation sweep with %v interval", jp.interval)
	go jp.run(ctx)
}

// Stop stops the background sweep loop
func (jp *JobProcessor) Stop() {
	log.Println("Stopping reconfirmation sweep...")
	close(jp.done)
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.runSweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) runSweep(ctx context.Context) {
	result, err := jp.service.Sweep(ctx)
	if err != nil {
		log.Printf("Reconfirmation sweep failed: %v", err)
		return
	}
	if result.AutoCancelled+result.Flagged+result.Reminded > 0 {
		log.Printf("Reconfirmation sweep: %d auto-cancelled, %d flagged, %d reminded",
			result.AutoCancelled, result.Flagged, result.Reminded)
	}
}
