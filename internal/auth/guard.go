package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "authgate/internal/errors"
)

const bearerScheme = "Bearer"

var errMalformedHeader = errors.New("malformed authorization header")

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Guard returns middleware that admits only requests carrying
// "Authorization: Bearer <token>" with a token the verifier accepts.
// Missing, malformed and invalid tokens get the same 403 response. On success
// the claims are stored under ContextKey and on the request context.
func Guard(verifier TokenVerifier, logger *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, header string) (interface{}, error) {
			raw, err := bearerToken(header)
			if err != nil {
				return nil, err
			}
			claims, err := verifier.Verify(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ContextKey).(*Claims)
			if !ok {
				return
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithClaims(req.Context(), claims)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.DebugContext(c.Request().Context(), "request rejected by auth guard",
				"path", c.Path(),
				"reason", err,
			)
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"message": apperrors.MsgUnauthorized,
				"data":    nil,
			})
		},
	})
}

// bearerToken splits the header on its first space and requires the exact
// "Bearer" scheme followed by a non-empty token.
func bearerToken(header string) (string, error) {
	scheme, token, _ := strings.Cut(header, " ")
	if scheme != bearerScheme || token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}
