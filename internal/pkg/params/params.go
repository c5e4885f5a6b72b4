// Package params parses path and query parameters into domain validation
// errors.
package params

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"societyhub/internal/domain"
)

func ID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidFields("invalid path parameter", map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

// OptionalInt64 returns 0 when the query parameter is absent.
func OptionalInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, domain.InvalidFields("invalid query parameter", map[string]string{name: "must be a non-negative integer"})
	}
	return v, nil
}

func Time(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, domain.InvalidFields("missing query parameter", map[string]string{name: "required"})
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.InvalidFields("invalid query parameter", map[string]string{name: "must be RFC3339"})
	}
	return t, nil
}

// Date validates a YYYY-MM-DD query parameter. Empty falls back to def.
func Date(c *gin.Context, name, def string) (string, error) {
	raw := c.DefaultQuery(name, def)
	if _, err := time.Parse(domain.DateLayout, raw); err != nil {
		return "", domain.InvalidFields("invalid query parameter", map[string]string{name: "must be YYYY-MM-DD"})
	}
	return raw, nil
}

// Page reads limit and offset.
func Page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
