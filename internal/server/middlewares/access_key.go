package middlewares

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/pkg/errors"
)

const (
	// AccessKeyContextKey is the key to retrieve the access key token from echo.Context.
	AccessKeyContextKey = "access_key"

	issuer = "grandmaster"
)

// AccessKey returns an access key auth middleware.
// The key is read from the Authorization header or the access_key query parameter.
func AccessKey(signingKey []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  signingKey,
		ContextKey:  AccessKeyContextKey,
		TokenLookup: "header:Authorization:Bearer ,query:access_key",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, gmerror.NewWithTagCode(
				http.StatusUnauthorized,
				gmerror.TagInvalidAuth,
				"Invalid access key.",
			))
		},
	})
}

// NewAccessKey returns a new access key for the given subject.
func NewAccessKey(signingKey []byte, subject string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})

	key, err := token.SignedString(signingKey)
	return key, errors.Wrap(err, "could not sign access key")
}

// AccessKeySubject returns the subject of the access key used by the current request.
func AccessKeySubject(c echo.Context) string {
	token, ok := c.Get(AccessKeyContextKey).(*jwt.Token)
	if !ok {
		return ""
	}

	subject, _ := token.Claims.GetSubject()
	return subject
}
