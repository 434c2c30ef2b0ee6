// Package server exposes the review service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/example/lingua/internal/config"
	"github.com/example/lingua/internal/review"
	"github.com/example/lingua/pkg/models"
)

// ReviewService is the part of review.Service the handlers use
type ReviewService interface {
	Submit(ctx context.Context, userID int64, upIDs, downIDs []int64) (review.SubmitResult, error)
	MarkLearned(ctx context.Context, userID, itemID int64) (*models.ReviewState, error)
	Due(ctx context.Context, userID int64) ([]models.ReviewState, error)
	NewItems(ctx context.Context, userID int64, kind models.ItemKind) ([]models.LearnableItem, error)
	Forecast(ctx context.Context, userID int64, days int, hourly bool) (review.Forecast, error)
	Activity(ctx context.Context, userID int64, days int) (review.Activity, error)
	Unlocked(ctx context.Context, userID int64) ([]models.LearnableItem, error)
	Reset(ctx context.Context, userID int64, kind models.ItemKind) (int64, error)
	Summary(ctx context.Context, userID int64) (review.Summary, error)
}

// Server is the HTTP front of the review service
type Server struct {
	cfg    config.ServerConfig
	echo   *echo.Echo
	svc    ReviewService
	users  UserResolver
	logger *logrus.Logger
}

// New builds a server with all routes registered
func New(cfg config.ServerConfig, svc ReviewService, users UserResolver, logger *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:    cfg,
		echo:   e,
		svc:    svc,
		users:  users,
		logger: logger,
	}

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/healthz", s.health)

	api := e.Group("/api", s.resolveUser)
	api.GET("/forecast", s.getForecast)
	api.GET("/activity", s.getActivity)
	api.GET("/summary", s.getSummary)
	api.GET("/reviews/due", s.getDue)
	api.POST("/reviews", s.submitReviews)
	api.GET("/items/new", s.getNewItems)
	api.GET("/items/unlocked", s.getUnlocked)
	api.POST("/items/:id/learned", s.markLearned)
	api.DELETE("/progress", s.resetProgress)

	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Addr).Info("HTTP server started")
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return s.echo.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			entry := logger.WithFields(logrus.Fields{
				"method":    req.Method,
				"path":      c.Path(),
				"uri":       req.RequestURI,
				"status":    status,
				"duration":  time.Since(start).String(),
				"remote_ip": c.RealIP(),
			})
			if id, ok := c.Get(userKey).(int64); ok && id != 0 {
				entry = entry.WithField("user_id", id)
			}

			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("request completed")
			case status >= http.StatusBadRequest:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
			return nil
		}
	}
}
