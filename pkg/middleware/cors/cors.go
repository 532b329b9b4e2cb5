package cors

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// New returns a CORS middleware that honors a list of allowed origins and an
// optional origin regexp (e.g. `https://.*\.innohassle\.ru`).
func New(allowedOrigins []string, originRegexp string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0 && originRegexp == ""
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}

	var pattern *regexp.Regexp
	if originRegexp != "" {
		if compiled, err := regexp.Compile("^(?:" + originRegexp + ")$"); err == nil {
			pattern = compiled
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll || hasOrigin(originSet, origin) || matchesPattern(pattern, origin) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
		} else if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func hasOrigin(originSet map[string]struct{}, origin string) bool {
	if len(originSet) == 0 {
		return false
	}

	origin = strings.TrimRight(origin, "/")
	_, ok := originSet[origin]
	return ok
}

func matchesPattern(pattern *regexp.Regexp, origin string) bool {
	if pattern == nil {
		return false
	}
	return pattern.MatchString(strings.TrimRight(origin, "/"))
}
