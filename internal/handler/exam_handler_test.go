package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campuskit/campus-scheduler/internal/dto"
	appErrors "github.com/campuskit/campus-scheduler/pkg/errors"
)

type fakeExamSrv struct {
	resp *dto.GenerateExamsResponse
	err  error
}

func (f *fakeExamSrv) Generate(context.Context, dto.GenerateExamsRequest) (*dto.GenerateExamsResponse, error) {
	return f.resp, f.err
}

func TestExamHandlerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExamHandler{service: &fakeExamSrv{
		resp: &dto.GenerateExamsResponse{Fitness: 2000},
	}}

	rec := httptest.NewRecorder()
	body := `{"startDate":"2026-03-02","endDate":"2026-03-06","subjects":[{"name":"Mathematics","batch":"2026","department":"CSE"}]}`
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/exams/generate", strings.NewReader(body))

	handler.Generate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope testEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(2000), envelope.Data["fitness"])
}

func TestExamHandlerGenerateRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExamHandler{service: &fakeExamSrv{}}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/exams/generate", strings.NewReader("not json"))

	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExamHandlerGeneratePropagatesInfeasible(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExamHandler{service: &fakeExamSrv{
		err: appErrors.Clone(appErrors.ErrInfeasible, ""),
	}}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/exams/generate", strings.NewReader(`{}`))

	handler.Generate(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
