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

type seatingArranger interface {
	Generate(ctx context.Context, req dto.GenerateSeatingRequest) (*dto.GenerateSeatingResponse, error)
}

// SeatingHandler exposes the exam seating endpoint.
type SeatingHandler struct {
	service seatingArranger
}

// NewSeatingHandler constructs the handler.
func NewSeatingHandler(svc *service.SeatingService) *SeatingHandler {
	return &SeatingHandler{service: svc}
}

// Generate godoc
// @Summary Arrange exam seating
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSeatingRequest true "Generate seating payload"
// @Success 200 {object} response.Envelope
// @Router /seating/generate [post]
func (h *SeatingHandler) Generate(c *gin.Context) {
	var req dto.GenerateSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid seating payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
