// internal/queue/worker.go
package queue

import (
	"context"
	"encoding/json"
	"time"

	"leadpulse-service/internal/domain/call"
	xerrors "leadpulse-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// CallLogger is the slice of the call service the worker needs.
type CallLogger interface {
	LogCall(ctx context.Context, orgID int64, req *call.LogCallRequest) (*call.Call, error)
}

// Worker drains provider call events off the queue and persists them as call
// records. Validation failures are dead-lettered, not retried: a malformed
// callback never becomes well-formed by replaying it.
type Worker struct {
	rabbit *RabbitMQ
	calls  CallLogger
	logger *zap.Logger
}

func NewWorker(rabbit *RabbitMQ, calls CallLogger, logger *zap.Logger) *Worker {
	return &Worker{rabbit: rabbit, calls: calls, logger: logger}
}

// Run consumes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.rabbit.Ch.Consume(QueueName, "call-event-worker", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			var payload CallEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				w.logger.Error("undecodable call event", zap.Error(err))
				d.Nack(false, false)
				continue
			}

			req := translateCallback(payload.Callback)
			if _, err := w.calls.LogCall(ctx, payload.OrgID, req); err != nil {
				requeue := !xerrors.Is(err, xerrors.ErrValidation)
				w.logger.Error("failed to ingest call event",
					zap.Int64("org_id", payload.OrgID),
					zap.String("call_sid", payload.Callback.CallSID),
					zap.Bool("requeue", requeue),
					zap.Error(err),
				)
				d.Nack(false, requeue)
				continue
			}

			d.Ack(false)
		}
	}
}

// translateCallback maps provider callback fields onto the call data model.
func translateCallback(cb call.ProviderStatusCallback) *call.LogCallRequest {
	req := &call.LogCallRequest{
		PhoneNumber:  cb.To,
		UserID:       cb.UserID,
		RecordingRef: cb.RecordingURL,
		StartTime:    time.Now(),
	}

	if ts, err := time.Parse(time.RFC1123Z, cb.Timestamp); err == nil {
		req.StartTime = ts
	}

	switch cb.Direction {
	case "inbound":
		req.Direction = string(call.DirectionIncoming)
	default:
		req.Direction = string(call.DirectionOutgoing)
	}

	switch cb.CallStatus {
	case "completed":
		if cb.CallDuration > 0 {
			req.Outcome = string(call.OutcomeAnswered)
			req.DurationSecs = cb.CallDuration
		} else {
			req.Outcome = string(call.OutcomeNoAnswer)
		}
	case "busy":
		req.Outcome = string(call.OutcomeBusy)
	default:
		req.Outcome = string(call.OutcomeNoAnswer)
	}

	return req
}
