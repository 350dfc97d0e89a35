package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler returns a handler that formats rendered errors.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		switch cause := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if cause.Internal != nil {
				log.WithError(cause.Internal).Warn("Error [ECHO]")
			}
			_ = c.JSON(cause.Code, echo.Map{
				"error": echo.Map{
					"message": fmt.Sprint(cause.Message),
				},
			})
		case *gmerror.Error:
			status := gmerror.StatusCode(cause)
			if status < 500 {
				_ = c.JSON(status, cause)
				return
			}

			internal(log, err, c)
		default:
			internal(log, err, c)
		}
	}
}

func internal(log logrus.FieldLogger, err error, c echo.Context) {
	id := uuid.Must(uuid.NewV4()).String()
	log.WithField("error_id", id).WithError(err).Error("Unexpected error")

	_ = c.JSON(http.StatusInternalServerError, echo.Map{
		"error": echo.Map{
			"tag":     gmerror.TagInternalFailure,
			"message": fmt.Sprintf("Unexpected error (id: %s)", id),
		},
	})
}
