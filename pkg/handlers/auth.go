package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hugo-micropub/pkg/models"
	"hugo-micropub/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var authClient = &http.Client{Timeout: 10 * time.Second}

// IndieAuth verifies the caller's bearer token against the configured token
// endpoint before any mutating or source request goes through. With no token
// endpoint configured the middleware is a pass-through, for deployments that
// terminate auth in front of the service and for tests.
func IndieAuth(cfg *models.SiteConfig, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.TokenEndpoint == "" {
			c.Next()
			return
		}

		token := c.GetHeader("Authorization")
		if token == "" {
			if t := c.PostForm("access_token"); t != "" {
				token = "Bearer " + t
			}
		}
		if token == "" {
			abortError(c, services.NewError(http.StatusUnauthorized, "insufficient_scope",
				"The request lacks authentication credentials."))
			return
		}

		me, scope, err := verifyToken(cfg.TokenEndpoint, token)
		if err != nil {
			log.WithError(err).Warn("token endpoint unreachable")
			abortError(c, services.NewError(http.StatusBadGateway, "connection_problem",
				"Unable to connect to the authorization service."))
			return
		}
		if me == "" || scope == "" {
			abortError(c, services.NewError(http.StatusUnauthorized, "insufficient_scope",
				"The request lacks authentication credentials."))
			return
		}
		if cfg.Me != "" && !sameSite(me, cfg.Me) {
			abortError(c, services.NewError(http.StatusUnauthorized, "insufficient_scope",
				"The request lacks valid authentication credentials."))
			return
		}
		if !hasCreateScope(scope) {
			abortError(c, services.NewError(http.StatusForbidden, "forbidden",
				"Client does not have access to this resource."))
			return
		}
		c.Next()
	}
}

// verifyToken forwards the Authorization header to the token endpoint and
// returns the me and scope values it vouches for.
func verifyToken(endpoint, token string) (me, scope string, err error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/x-www-form-urlencoded")

	resp, err := authClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", "", err
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return "", "", err
	}
	return values.Get("me"), values.Get("scope"), nil
}

func sameSite(a, b string) bool {
	trim := func(s string) string {
		s = strings.TrimPrefix(s, "https://")
		s = strings.TrimPrefix(s, "http://")
		return strings.TrimRight(s, "/")
	}
	return trim(a) == trim(b)
}

func hasCreateScope(scope string) bool {
	for _, s := range strings.FieldsFunc(scope, func(r rune) bool { return r == ' ' || r == ',' }) {
		if s == "create" || s == "post" {
			return true
		}
	}
	return false
}
