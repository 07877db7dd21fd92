package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/text-summarizer/internal/domain/auth"
	apperrors "github.com/yanqian/text-summarizer/pkg/errors"
)

// authMiddleware requires a bearer token issued by the auth service on every API route.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="text-summarizer"`)
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing or malformed bearer token", nil))
			return
		}

		claims, err := svc.ValidateToken(c.Request.Context(), token)
		switch {
		case err == nil:
			setClaims(c, claims)
			c.Next()
		case apperrors.IsCode(err, auth.CodeInvalidToken):
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			abortWithError(c, NewHTTPError(http.StatusForbidden, auth.CodeInvalidToken, errMessage(err), err))
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, auth.CodeAuthError, "token validation failed", err))
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
