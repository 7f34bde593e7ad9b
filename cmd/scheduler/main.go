package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campuskit/campus-scheduler/internal/handler"
	"github.com/campuskit/campus-scheduler/internal/middleware"
	"github.com/campuskit/campus-scheduler/internal/service"
	"github.com/campuskit/campus-scheduler/pkg/config"
	"github.com/campuskit/campus-scheduler/pkg/logger"
	corsmiddleware "github.com/campuskit/campus-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/campus-scheduler/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	timetableSvc := service.NewTimetableService(cfg, validate, logr, metricsSvc)
	examSvc := service.NewExamService(cfg, validate, logr, metricsSvc)
	seatingSvc := service.NewSeatingService(cfg, validate, logr, metricsSvc)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	examHandler := handler.NewExamHandler(examSvc)
	seatingHandler := handler.NewSeatingHandler(seatingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		timetables := api.Group("/timetables")
		timetables.POST("/generate", timetableHandler.Generate)
		timetables.POST("/:id/makeup", timetableHandler.AddMakeup)
		timetables.GET("/:id/export", timetableHandler.Export)

		api.POST("/exams/generate", examHandler.Generate)
		api.POST("/seating/generate", seatingHandler.Generate)
		api.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
