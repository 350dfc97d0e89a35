package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type binder struct {
	echo.DefaultBinder
	methodsWithBody map[string]bool
}

// NewBinder returns a wrapp of the default binder implementation with extra checks.
func NewBinder() echo.Binder {
	return &binder{
		methodsWithBody: map[string]bool{
			http.MethodPost:  true,
			http.MethodPatch: true,
			http.MethodPut:   true,
		},
	}
}

// Bind implements the echo.Bind interface.
// Only the body is bound, path and query parameters are read by the handlers.
func (b *binder) Bind(i any, c echo.Context) (err error) {
	if b.methodsWithBody[c.Request().Method] {
		if c.Request().ContentLength == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Request body can't be empty")
		}
		return b.DefaultBinder.BindBody(c, i)
	}
	return b.DefaultBinder.Bind(i, c)
}
