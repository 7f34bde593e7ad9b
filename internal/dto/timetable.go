package dto

import "time"

// CourseLoadRequest captures the weekly demand of one course.
type CourseLoadRequest struct {
	Name   string `json:"name" validate:"required"`
	Theory int    `json:"theoryHours" validate:"omitempty,min=0,max=16"`
	Lab    int    `json:"labBlocks" validate:"omitempty,min=0,max=4"`
}

// GenerateTimetableRequest instructs the generator to build a class
// timetable proposal. Grid fields left empty fall back to server defaults.
type GenerateTimetableRequest struct {
	Sections    []string            `json:"sections" validate:"required,min=1,dive,required"`
	Days        []string            `json:"days" validate:"omitempty,min=1"`
	HoursPerDay int                 `json:"hoursPerDay" validate:"omitempty,min=1,max=16"`
	BreakHour   *int                `json:"breakHour" validate:"omitempty,min=-1,max=15"`
	Courses     []CourseLoadRequest `json:"courses" validate:"required,min=1,dive"`
	TheoryRooms []string            `json:"theoryRooms" validate:"required,min=1,dive,required"`
	LabRooms    []string            `json:"labRooms" validate:"omitempty,dive,required"`
	LabDuration int                 `json:"labDuration" validate:"omitempty,min=1,max=6"`
	Search      SearchParams        `json:"search"`
}

// PlacementResponse is one scheduled session.
type PlacementResponse struct {
	Section  string `json:"section"`
	Activity string `json:"activity"`
	Kind     string `json:"kind"`
	Day      string `json:"day"`
	DayIndex int    `json:"dayIndex"`
	Hour     int    `json:"hour"`
	Duration int    `json:"duration"`
	Room     string `json:"room"`
}

// GenerateTimetableResponse returns the built proposal. The proposal stays
// addressable until ExpiresAt for makeup insertion and export.
type GenerateTimetableResponse struct {
	ProposalID  string              `json:"proposalId"`
	ExpiresAt   time.Time           `json:"expiresAt"`
	Fitness     float64             `json:"fitness"`
	Placements  []PlacementResponse `json:"placements"`
	Diagnostics SearchDiagnostics   `json:"diagnostics"`
}

// MakeupSessionRequest asks for one extra session inside a stored proposal.
type MakeupSessionRequest struct {
	Section string `json:"section" validate:"required"`
	Course  string `json:"course" validate:"required"`
	Lab     bool   `json:"lab"`
}

// MakeupSessionResponse returns the inserted session and the proposal's
// re-scored fitness.
type MakeupSessionResponse struct {
	Placement PlacementResponse `json:"placement"`
	Fitness   float64           `json:"fitness"`
}

// ExportTimetableQuery selects the render format for a stored proposal.
type ExportTimetableQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
