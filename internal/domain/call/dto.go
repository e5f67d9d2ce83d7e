// internal/domain/call/dto.go
package call

import "time"

type LogCallRequest struct {
	PhoneNumber  string    `json:"phone_number" binding:"required,max=20"`
	Direction    string    `json:"direction" binding:"required"`
	Outcome      string    `json:"outcome" binding:"required"`
	CallStatus   string    `json:"call_status" binding:"omitempty"`
	DurationSecs int       `json:"duration_secs" binding:"omitempty,min=0"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	UserID       int64     `json:"user_id"`
	RecordingRef string    `json:"recording_ref"`
}

// ProviderStatusCallback is the payload the telephony provider posts when a
// call completes. It is translated into a LogCallRequest by the ingestion
// worker.
type ProviderStatusCallback struct {
	CallSID      string `json:"CallSid" form:"CallSid"`
	To           string `json:"To" form:"To" binding:"required"`
	Direction    string `json:"Direction" form:"Direction"`
	CallStatus   string `json:"CallStatus" form:"CallStatus"`
	CallDuration int    `json:"CallDuration" form:"CallDuration"`
	RecordingURL string `json:"RecordingUrl" form:"RecordingUrl"`
	Timestamp    string `json:"Timestamp" form:"Timestamp"`
	UserID       int64  `json:"user_id" form:"user_id"`
}

type CallListFilters struct {
	UserID   *int64    `form:"user_id"`
	Outcome  string    `form:"outcome"`
	From     time.Time `form:"from" time_format:"2006-01-02"`
	To       time.Time `form:"to" time_format:"2006-01-02"`
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"page_size" binding:"omitempty,min=1,max=200"`
}

type CallListResponse struct {
	Calls    []Call `json:"calls"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type UpdateCallStatusRequest struct {
	CallStatus string `json:"call_status" binding:"required"`
}
