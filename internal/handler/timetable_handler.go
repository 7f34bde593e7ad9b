package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/service"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
	"github.com/campuskit/campus-scheduler/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	AddMakeup(ctx context.Context, proposalID string, req dto.MakeupSessionRequest) (*dto.MakeupSessionResponse, error)
	Export(ctx context.Context, proposalID, format string) ([]byte, string, error)
}

// TimetableHandler exposes the class timetable endpoints.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a class timetable proposal
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AddMakeup godoc
// @Summary Insert a makeup session into a stored proposal
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.MakeupSessionRequest true "Makeup session payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/makeup [post]
func (h *TimetableHandler) AddMakeup(c *gin.Context) {
	var req dto.MakeupSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid makeup payload"))
		return
	}
	result, err := h.service.AddMakeup(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export a stored proposal as CSV or PDF
// @Tags Timetables
// @Produce text/csv
// @Param id path string true "Proposal ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportTimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	payload, contentType, err := h.service.Export(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	extension := "csv"
	if contentType == "application/pdf" {
		extension = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"timetable-%s.%s\"", c.Param("id"), extension))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, payload)
}
