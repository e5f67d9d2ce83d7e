// internal/domain/lead/dto.go
package lead

type CreateLeadRequest struct {
	Name           string   `json:"name" binding:"required,max=255"`
	Phone          string   `json:"phone" binding:"required,max=20"`
	Email          string   `json:"email" binding:"omitempty,email,max=255"`
	Company        string   `json:"company" binding:"max=255"`
	Source         string   `json:"source" binding:"omitempty,oneof=manual webhook import"`
	AssignedUserID *int64   `json:"assigned_user_id"`
	Notes          string   `json:"notes"`
	Tags           []string `json:"tags"`
}

type UpdateLeadRequest struct {
	Name           *string  `json:"name" binding:"omitempty,max=255"`
	Phone          *string  `json:"phone" binding:"omitempty,max=20"`
	Email          *string  `json:"email" binding:"omitempty,email,max=255"`
	Company        *string  `json:"company" binding:"omitempty,max=255"`
	AssignedUserID *int64   `json:"assigned_user_id"`
	Notes          *string  `json:"notes"`
	Tags           []string `json:"tags"`
}

// TransitionRequest moves a lead to a new pipeline stage. ExpectedStage is
// the optimistic-concurrency guard: when set, the move fails with a conflict
// if the lead has been moved by someone else since the caller last read it.
type TransitionRequest struct {
	TargetStage   string  `json:"target_stage" binding:"required"`
	ExpectedStage *string `json:"expected_stage"`
}

type AddNoteRequest struct {
	Description string `json:"description" binding:"required,max=2000"`
}

type LeadListFilters struct {
	Stage          string `form:"stage"`
	Source         string `form:"source"`
	AssignedUserID *int64 `form:"assigned_user_id"`
	Search         string `form:"search"` // matches name, phone, email
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type LeadListResponse struct {
	Leads      []Lead `json:"leads"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

type BulkImportRequest struct {
	Leads []CreateLeadRequest `json:"leads" binding:"required,dive"`
}

type BulkImportResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
