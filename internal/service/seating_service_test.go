package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/campus-scheduler/internal/dto"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
)

func seatingRequest() dto.GenerateSeatingRequest {
	students := make([]dto.SeatingStudentRequest, 0, 6)
	for i := 0; i < 3; i++ {
		students = append(students, dto.SeatingStudentRequest{
			ID:      fmt.Sprintf("M%d", i+1),
			Section: "CSE-A",
			Subject: "Mathematics",
		})
	}
	for i := 0; i < 3; i++ {
		students = append(students, dto.SeatingStudentRequest{
			ID:      fmt.Sprintf("P%d", i+1),
			Section: "CSE-B",
			Subject: "Physics",
		})
	}
	return dto.GenerateSeatingRequest{
		Students: students,
		Rooms:    []dto.SeatingRoomRequest{{Name: "C101", Columns: 2, SeatsPerColumn: 3}},
		Search:   seedParam(5),
	}
}

func assertSeatingValid(t *testing.T, req dto.GenerateSeatingRequest, resp *dto.GenerateSeatingResponse) {
	t.Helper()

	require.Len(t, resp.Assignments, len(req.Students))
	seats := map[string]bool{}
	students := map[string]bool{}
	columns := map[string]map[int]string{}
	for _, a := range resp.Assignments {
		seat := fmt.Sprintf("%s/%d/%d", a.Room, a.Column, a.Row)
		assert.False(t, seats[seat], "seat %s assigned twice", seat)
		seats[seat] = true
		assert.False(t, students[a.StudentID], "student %s seated twice", a.StudentID)
		students[a.StudentID] = true

		if columns[a.Room] == nil {
			columns[a.Room] = map[int]string{}
		}
		if subject, ok := columns[a.Room][a.Column]; ok {
			assert.Equal(t, subject, a.Subject, "column %d in %s mixes subjects", a.Column, a.Room)
		} else {
			columns[a.Room][a.Column] = a.Subject
		}
	}
	for room, cols := range columns {
		for col, subject := range cols {
			if neighbor, ok := cols[col+1]; ok {
				assert.NotEqual(t, subject, neighbor, "adjacent columns %d and %d in %s share a subject", col, col+1, room)
			}
		}
	}
}

func TestSeatingGenerateCSP(t *testing.T) {
	svc := NewSeatingService(testServiceConfig(), nil, zap.NewNop(), NewMetricsService())

	req := seatingRequest()
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "csp", resp.Strategy)
	assert.True(t, resp.Diagnostics.Success)
	assertSeatingValid(t, req, resp)
}

func TestSeatingGenerateGA(t *testing.T) {
	svc := NewSeatingService(testServiceConfig(), nil, zap.NewNop(), NewMetricsService())

	req := seatingRequest()
	req.Strategy = "ga"
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ga", resp.Strategy)

	require.Len(t, resp.Assignments, len(req.Students))
	students := map[string]bool{}
	seats := map[string]bool{}
	for _, a := range resp.Assignments {
		students[a.StudentID] = true
		seats[fmt.Sprintf("%s/%d/%d", a.Room, a.Column, a.Row)] = true
	}
	assert.Len(t, students, len(req.Students), "every student seated exactly once")
	assert.Len(t, seats, len(req.Students), "no seat reused")
}

func TestSeatingGenerateValidation(t *testing.T) {
	svc := NewSeatingService(testServiceConfig(), nil, zap.NewNop(), NewMetricsService())

	_, err := svc.Generate(context.Background(), dto.GenerateSeatingRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeatingGenerateOverCapacity(t *testing.T) {
	svc := NewSeatingService(testServiceConfig(), nil, zap.NewNop(), NewMetricsService())

	req := seatingRequest()
	req.Rooms = []dto.SeatingRoomRequest{{Name: "C101", Columns: 1, SeatsPerColumn: 4}}
	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	typed := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInfeasible.Code, typed.Code)
	assert.Equal(t, 422, typed.Status)
}

func TestSeatingGenerateImpossiblePacking(t *testing.T) {
	svc := NewSeatingService(testServiceConfig(), nil, zap.NewNop(), NewMetricsService())

	// Four students of one subject cannot share a 2x2 room without touching
	// columns.
	req := dto.GenerateSeatingRequest{
		Students: []dto.SeatingStudentRequest{
			{ID: "M1", Subject: "Mathematics"},
			{ID: "M2", Subject: "Mathematics"},
			{ID: "M3", Subject: "Mathematics"},
			{ID: "M4", Subject: "Mathematics"},
		},
		Rooms:  []dto.SeatingRoomRequest{{Name: "C101", Columns: 2, SeatsPerColumn: 2}},
		Search: seedParam(5),
	}
	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInfeasible.Code, appErrors.FromError(err).Code)
}
