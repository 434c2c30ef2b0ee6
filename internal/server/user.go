package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const userKey = "user_id"

var errInvalidUser = errors.New("invalid user id")

// UserResolver identifies the user behind a request. Returning 0 means the
// request is anonymous.
type UserResolver interface {
	ResolveUser(c echo.Context) (int64, error)
}

// HeaderUserResolver reads the user ID from a request header set by an
// authenticating proxy
type HeaderUserResolver struct {
	Header string
}

func (r HeaderUserResolver) ResolveUser(c echo.Context) (int64, error) {
	raw := strings.TrimSpace(c.Request().Header.Get(r.Header))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidUser
	}
	return id, nil
}

func (s *Server) resolveUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := s.users.ResolveUser(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		c.Set(userKey, id)
		return next(c)
	}
}

func userID(c echo.Context) int64 {
	id, _ := c.Get(userKey).(int64)
	return id
}
