package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/shared"
)

const requestTimeout = 5 * time.Second

// respondError writes err with the status its kind maps to. Unclassified
// errors are not echoed to the client.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out", "code": shared.KindUpstream})
		return
	}

	kind := shared.KindOf(err)
	if kind == shared.KindInternal {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": kind})
		return
	}

	var e *shared.Error
	errors.As(err, &e)
	c.JSON(kind.HTTPStatus(), gin.H{"error": e.Message, "code": kind})
}
