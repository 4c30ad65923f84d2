package middleware

import "github.com/gin-gonic/gin"

// actorIDKey is the key used to store the acting principal's ID in the Gin
// context. Using a custom type prevents collisions.
const actorIDKey = contextKey("actorID")

// ActorMiddleware records the acting principal for audit attribution. The
// identity comes from the X-Actor-ID header; deployments front this service
// with an authenticating gateway.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-Actor-ID")
		if actor == "" {
			actor = "anonymous"
		}
		c.Set(string(actorIDKey), actor)
		c.Next()
	}
}

// GetActorFromContext retrieves the acting principal's ID from the Gin
// context. It returns the ID and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorIDKey))
	if !exists {
		return "", false
	}

	actor, ok := actorVal.(string)
	if !ok {
		return "", false
	}
	return actor, true
}
