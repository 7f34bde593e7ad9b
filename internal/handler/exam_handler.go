package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-scheduler/internal/dto"
	"github.com/campuskit/campus-scheduler/internal/service"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
	"github.com/campuskit/campus-scheduler/pkg/response"
)

type examScheduler interface {
	Generate(ctx context.Context, req dto.GenerateExamsRequest) (*dto.GenerateExamsResponse, error)
}

// ExamHandler exposes the exam scheduling endpoint.
type ExamHandler struct {
	service examScheduler
}

// NewExamHandler constructs the handler.
func NewExamHandler(svc *service.ExamService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// Generate godoc
// @Summary Schedule exams into a calendar window
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.GenerateExamsRequest true "Generate exams payload"
// @Success 200 {object} response.Envelope
// @Router /exams/generate [post]
func (h *ExamHandler) Generate(c *gin.Context) {
	var req dto.GenerateExamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
