package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitcoach/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Shared sentinels that services return for authorization and input problems.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// ParamID parses a positive integer path parameter, writing a 400 response when it is malformed.
func ParamID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// Pagination reads limit/offset query parameters, clamping them to sane bounds.
func Pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
}

// InternalError logs err and writes a generic 500 response.
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
