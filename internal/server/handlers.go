package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/example/lingua/internal/review"
	"github.com/example/lingua/internal/spaced_repetition"
	"github.com/example/lingua/pkg/models"
)

const dateLayout = "2006-01-02"

type dailyBucket struct {
	Date    string `json:"date"`
	Reviews int    `json:"reviews"`
}

type hourlyBucket struct {
	Hour    int `json:"hour"`
	Reviews int `json:"reviews"`
}

type forecastResponse struct {
	Daily  []dailyBucket  `json:"daily"`
	Hourly []hourlyBucket `json:"hourly,omitempty"`
}

type activityDay struct {
	Date    string `json:"date"`
	Vocab   int    `json:"vocab"`
	Grammar int    `json:"grammar"`
}

type activityResponse struct {
	Days   []activityDay `json:"days"`
	Streak int           `json:"streak"`
}

type submitRequest struct {
	UpIDs   []int64 `json:"upIds"`
	DownIDs []int64 `json:"downIds"`
}

type resetResponse struct {
	Deleted int64 `json:"deleted"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/forecast?days=7&hourly=true
func (s *Server) getForecast(c echo.Context) error {
	days, err := intParam(c, "days")
	if err != nil {
		return err
	}
	hourly := false
	if raw := c.QueryParam("hourly"); raw != "" {
		if hourly, err = strconv.ParseBool(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "hourly must be a boolean")
		}
	}

	forecast, err := s.svc.Forecast(c.Request().Context(), userID(c), days, hourly)
	if err != nil {
		return s.fail(c, err)
	}

	resp := forecastResponse{
		Daily: lo.Map(forecast.Daily, func(b spaced_repetition.DailyBucket, _ int) dailyBucket {
			return dailyBucket{Date: b.Date.Format(dateLayout), Reviews: b.Reviews}
		}),
	}
	if hourly {
		resp.Hourly = lo.Map(forecast.Hourly, func(b spaced_repetition.HourlyBucket, _ int) hourlyBucket {
			return hourlyBucket{Hour: b.Hour, Reviews: b.Reviews}
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /api/activity?days=7
func (s *Server) getActivity(c echo.Context) error {
	days, err := intParam(c, "days")
	if err != nil {
		return err
	}

	activity, err := s.svc.Activity(c.Request().Context(), userID(c), days)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, activityResponse{
		Days: lo.Map(activity.Days, func(d spaced_repetition.DayActivity, _ int) activityDay {
			return activityDay{Date: d.Date.Format(dateLayout), Vocab: d.Vocab, Grammar: d.Grammar}
		}),
		Streak: activity.Streak,
	})
}

func (s *Server) getSummary(c echo.Context) error {
	summary, err := s.svc.Summary(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) getDue(c echo.Context) error {
	due, err := s.svc.Due(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, due)
}

// POST /api/reviews {"upIds": [...], "downIds": [...]}
func (s *Server) submitReviews(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user := userID(c)
	if user == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	result, err := s.svc.Submit(c.Request().Context(), user, req.UpIDs, req.DownIDs)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) getNewItems(c echo.Context) error {
	kind, err := models.ParseItemKind(c.QueryParam("kind"))
	if err != nil {
		return s.fail(c, err)
	}
	items, err := s.svc.NewItems(c.Request().Context(), userID(c), kind)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) getUnlocked(c echo.Context) error {
	items, err := s.svc.Unlocked(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// POST /api/items/:id/learned
func (s *Server) markLearned(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	user := userID(c)
	if user == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	state, err := s.svc.MarkLearned(c.Request().Context(), user, itemID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// DELETE /api/progress?kind=grammar
func (s *Server) resetProgress(c echo.Context) error {
	kind, err := models.ParseItemKind(c.QueryParam("kind"))
	if err != nil {
		return s.fail(c, err)
	}
	user := userID(c)
	if user == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	deleted, err := s.svc.Reset(c.Request().Context(), user, kind)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, resetResponse{Deleted: deleted})
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}

// fail maps service errors to HTTP errors. Unexpected errors are logged and
// hidden from the client.
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidKind):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		s.logger.WithError(err).WithField("path", c.Path()).Error("Request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
