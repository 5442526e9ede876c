package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/portfolio-api/internal/errors"
	"github.com/yukikurage/portfolio-api/internal/services"
)

// respondValidationError reports a *services.ValidationError and returns true,
// or returns false when err is some other error.
func respondValidationError(c *gin.Context, err error) bool {
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	apierrors.BadRequestWithDetails(c, verr.Message, verr.Fields)
	return true
}

// respondUnexpectedError logs err and answers with a generic 500. The error
// text is never sent to the client.
func respondUnexpectedError(c *gin.Context, err error) {
	logrus.WithError(err).
		WithField("path", c.Request.URL.Path).
		Error("Unhandled error")
	apierrors.InternalError(c, "")
}
