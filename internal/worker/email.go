// Package worker consumes background jobs from the Redis queue.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fotofolio/backend/internal/email"
	"github.com/fotofolio/backend/pkg/queue"
)

// retryBaseDelay spaces out redelivery attempts for a failing recipient.
const retryBaseDelay = 5 * time.Second

// retryDelay grows linearly with the attempt count.
func retryDelay(attempt int) time.Duration {
	return time.Duration(attempt+1) * retryBaseDelay
}

// EmailProcessor drains the email queue and delivers messages. Failed jobs
// are retried with an attempt counter and end up in the DLQ after
// queue.MaxRetries.
type EmailProcessor struct {
	queue  *queue.Queue
	sender *email.Sender
	logger *zap.Logger
}

// NewEmailProcessor creates an email processor.
func NewEmailProcessor(q *queue.Queue, sender *email.Sender, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, sender: sender, logger: logger}
}

// Run blocks processing jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopped")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("email worker stopped")
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		p.process(ctx, job)
	}
}

func (p *EmailProcessor) process(ctx context.Context, job *queue.Job) {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// Malformed payloads will never succeed; straight to the DLQ.
		p.logger.Error("invalid email payload", zap.Error(err), zap.String("job_id", job.ID))
		job.Attempt = queue.MaxRetries
		if err := p.queue.Retry(ctx, job); err != nil {
			p.logger.Error("dlq move failed", zap.Error(err), zap.String("job_id", job.ID))
		}
		return
	}

	msg, err := email.Render(payload)
	if err != nil {
		p.logger.Error("render failed", zap.Error(err), zap.String("job_id", job.ID))
		job.Attempt = queue.MaxRetries
		if err := p.queue.Retry(ctx, job); err != nil {
			p.logger.Error("dlq move failed", zap.Error(err), zap.String("job_id", job.ID))
		}
		return
	}

	if err := p.sender.Send(payload.Recipient, msg.Subject, msg.Body); err != nil {
		p.logger.Warn("delivery failed",
			zap.Error(err), zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		// Hold the job back before re-queueing so a dead SMTP host does not
		// turn the dequeue/retry cycle into a hot loop. On shutdown the job
		// goes straight back so it is not lost mid-backoff.
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay(job.Attempt)):
		}
		if err := p.queue.Retry(context.WithoutCancel(ctx), job); err != nil {
			p.logger.Error("retry failed", zap.Error(err), zap.String("job_id", job.ID))
		}
		return
	}

	p.logger.Info("email delivered",
		zap.String("job_id", job.ID),
		zap.String("kind", string(payload.Kind)),
		zap.String("to", payload.Recipient))
}
