package controller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/shopadmin-backend/internal/errors"
	"github.com/ikkim/shopadmin-backend/internal/middleware"
)

// parseIDParam reads a positive numeric path parameter. On failure it has
// already written a 400 response.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+strings.ReplaceAll(name, "_", " "))
		return 0, false
	}
	return uint(id), true
}

// splitValues flattens repeated and comma separated query values.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
