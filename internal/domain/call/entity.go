// internal/domain/call/entity.go
package call

import (
	"database/sql"
	"fmt"
	"time"

	xerrors "leadpulse-service/internal/pkg/errors"
)

type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionMissed   Direction = "missed"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionIncoming, DirectionOutgoing, DirectionMissed:
		return Direction(s), nil
	}
	return "", fmt.Errorf("%w: unknown call direction %q", xerrors.ErrValidation, s)
}

type Outcome string

const (
	OutcomeAnswered  Outcome = "answered"
	OutcomeNoAnswer  Outcome = "no_answer"
	OutcomeBusy      Outcome = "busy"
	OutcomeVoicemail Outcome = "voicemail"
)

func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeAnswered, OutcomeNoAnswer, OutcomeBusy, OutcomeVoicemail:
		return Outcome(s), nil
	}
	return "", fmt.Errorf("%w: unknown call outcome %q", xerrors.ErrValidation, s)
}

// Status is the rep's disposition of the conversation, set after the call.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInterested    Status = "interested"
	StatusNotInterested Status = "not_interested"
	StatusCallback      Status = "callback"
	StatusConverted     Status = "converted"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInterested, StatusNotInterested, StatusCallback, StatusConverted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown call status %q", xerrors.ErrValidation, s)
}

// Call is an independent record correlated to a lead by phone number at read
// time, never by foreign key. Calls can legitimately predate or lack lead
// context (e.g. a missed call from an unknown number).
type Call struct {
	ID          string    `json:"id" db:"id"`
	OrgID       int64     `json:"org_id" db:"org_id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Direction   Direction `json:"direction" db:"direction"`
	Outcome     Outcome   `json:"outcome" db:"outcome"`
	CallStatus  Status    `json:"call_status" db:"call_status"`

	// DurationSecs is 0 for calls that were never answered.
	DurationSecs int       `json:"duration_secs" db:"duration_secs"`
	StartTime    time.Time `json:"start_time" db:"start_time"`

	// UserID is the rep who placed or received the call.
	UserID       int64          `json:"user_id" db:"user_id"`
	RecordingRef sql.NullString `json:"recording_ref,omitempty" db:"recording_ref"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
