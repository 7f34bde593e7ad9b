package dto

// SeatingStudentRequest is one student record to seat.
type SeatingStudentRequest struct {
	ID         string `json:"id" validate:"required"`
	Department string `json:"department"`
	Section    string `json:"section"`
	Subject    string `json:"subject" validate:"required"`
}

// SeatingRoomRequest is one classroom laid out as columns of seats.
type SeatingRoomRequest struct {
	Name           string `json:"name" validate:"required"`
	Columns        int    `json:"columns" validate:"required,min=1,max=20"`
	SeatsPerColumn int    `json:"seatsPerColumn" validate:"required,min=1,max=30"`
}

// GenerateSeatingRequest arranges students for an exam sitting. Strategy
// "csp" searches for an exact arrangement; "ga" evolves one and reports the
// best found even when imperfect.
type GenerateSeatingRequest struct {
	Strategy string                  `json:"strategy" validate:"omitempty,oneof=csp ga"`
	Students []SeatingStudentRequest `json:"students" validate:"required,min=1,dive"`
	Rooms    []SeatingRoomRequest    `json:"rooms" validate:"required,min=1,dive"`
	Search   SearchParams            `json:"search"`
}

// SeatAssignmentResponse pins one student to one seat.
type SeatAssignmentResponse struct {
	Room       string `json:"room"`
	Column     int    `json:"column"`
	Row        int    `json:"row"`
	StudentID  string `json:"studentId"`
	Subject    string `json:"subject"`
	Section    string `json:"section,omitempty"`
	Department string `json:"department,omitempty"`
}

// GenerateSeatingResponse returns the seating arrangement.
type GenerateSeatingResponse struct {
	Strategy    string                   `json:"strategy"`
	Fitness     float64                  `json:"fitness"`
	Assignments []SeatAssignmentResponse `json:"assignments"`
	Diagnostics SearchDiagnostics        `json:"diagnostics"`
}
