package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/pkg/jwtutil"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/transport/http/response"
)

// Context keys under which AuthJWT stores the authenticated station.
const (
	ContextStationIDKey   = "station_id"
	ContextStationNameKey = "station_name"
)

// AuthJWT guards the audit-trail and identity routes with a station bearer
// token. The public /predict endpoint stays outside this middleware.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextStationIDKey, claims.StationID)
		c.Set(ContextStationNameKey, claims.Name)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
