package dto

// ExamSubjectRequest is one exam to place: a subject sat by one
// batch+department cohort.
type ExamSubjectRequest struct {
	Name       string `json:"name" validate:"required"`
	Batch      string `json:"batch" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// GenerateExamsRequest schedules exams into a calendar window.
type GenerateExamsRequest struct {
	StartDate        string               `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string               `json:"endDate" validate:"required,datetime=2006-01-02"`
	SlotLabels       []string             `json:"slotLabels" validate:"omitempty,min=1,dive,required"`
	BlackoutWeekdays []string             `json:"blackoutWeekdays" validate:"omitempty,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Subjects         []ExamSubjectRequest `json:"subjects" validate:"required,min=1,dive"`
	Search           SearchParams         `json:"search"`
}

// ExamAssignmentResponse pins one subject to one sitting.
type ExamAssignmentResponse struct {
	Subject    string `json:"subject"`
	Batch      string `json:"batch"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Slot       string `json:"slot"`
}

// GenerateExamsResponse returns the optimized exam schedule.
type GenerateExamsResponse struct {
	Fitness     float64                  `json:"fitness"`
	Assignments []ExamAssignmentResponse `json:"assignments"`
	Diagnostics SearchDiagnostics        `json:"diagnostics"`
}
