package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"aacbridge/internal/domain"
	"aacbridge/internal/models"
	"aacbridge/internal/repository"
)

// TriggerProcessor consumes the notification-trigger outbox: for each
// unprocessed trigger it attempts push delivery, marks the trigger
// processed with the outcome, and logs the attempt to history.
//
// Marking processed is the at-most-once consumption marker, but the
// read-then-write has no transactional guard: two processors racing
// on the same trigger (say, across a restart) can both deliver before
// either sets the flag. A single processor per process narrows the
// window without closing it.
type TriggerProcessor struct {
	triggers *repository.TriggerRepository
	push     *PushService
	history  *repository.HistoryRepository

	kick  chan struct{}
	done  chan struct{}
	unsub func()
}

func NewTriggerProcessor(triggers *repository.TriggerRepository, push *PushService, history *repository.HistoryRepository) *TriggerProcessor {
	return &TriggerProcessor{
		triggers: triggers,
		push:     push,
		history:  history,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start subscribes to the trigger collection and launches the worker
// goroutine. Each change coalesces into at most one pending kick.
func (p *TriggerProcessor) Start() {
	p.unsub = p.triggers.Watch(func() {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	})
	go p.run()
}

// Close cancels the subscription and stops the worker.
func (p *TriggerProcessor) Close() {
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
	close(p.done)
}

func (p *TriggerProcessor) run() {
	for {
		select {
		case <-p.done:
			return
		case <-p.kick:
			if _, err := p.ProcessPending(context.Background()); err != nil {
				log.Printf("[triggers] processing pass failed: %v", err)
			}
		}
	}
}

// ProcessPending drains every unprocessed trigger once and returns how
// many were handled.
func (p *TriggerProcessor) ProcessPending(ctx context.Context) (int, error) {
	pending, err := p.triggers.ListUnprocessed(ctx)
	if err != nil {
		return 0, err
	}
	for i := range pending {
		p.process(ctx, &pending[i])
	}
	return len(pending), nil
}

func (p *TriggerProcessor) process(ctx context.Context, t *models.NotificationTrigger) {
	delivered, err := p.push.Send(ctx, t.TargetUserID, t.Type, t.Title, t.Body, t.DataMap())
	if err != nil && !errors.Is(err, ErrNoPushToken) {
		log.Printf("[triggers] push for %s errored: %v", t.ID, err)
	}
	success := delivered && err == nil
	if err := p.triggers.MarkProcessed(ctx, t.ID, success, time.Now()); err != nil {
		// Delivered but not marked: the trigger stays claimable and a
		// later pass may deliver again.
		log.Printf("[triggers] mark processed failed for %s: %v", t.ID, err)
	}
	status := domain.DeliveryStatusSent
	if !success {
		status = domain.DeliveryStatusFailed
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"triggerId": t.ID,
		"title":     t.Title,
		"body":      t.Body,
		"data":      t.DataMap(),
	})
	if err := p.history.Append(ctx, &models.NotificationHistory{
		UserID:  t.TargetUserID,
		Type:    "trigger",
		Payload: string(payload),
		Status:  status,
	}); err != nil {
		log.Printf("[triggers] history append failed for %s: %v", t.ID, err)
	}
}
