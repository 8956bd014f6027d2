package middleware

import (
	"net/http"
	"strings"

	"github.com/chronicleteam/chronicle_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPrefixes lists route prefixes that never produce analytics events.
var untrackedPrefixes = []string{"/health", "/swagger"}

// apiEventName turns a matched route into an event name in the product's
// vocabulary, e.g. "/api/v1/workspaces/:workspace_id/goals/:goal_id/status"
// becomes "goal_status". Routes outside the goal tree fall back to the last
// static segment ("workspaces", "users", ...).
func apiEventName(routePath string) string {
	segments := strings.Split(strings.Trim(routePath, "/"), "/")
	var static []string
	for _, seg := range segments {
		if seg == "" || strings.HasPrefix(seg, ":") || seg == "api" || seg == "v1" {
			continue
		}
		static = append(static, seg)
	}
	if len(static) == 0 {
		return ""
	}

	// Everything nested under goals is a goal event.
	for i, seg := range static {
		if seg == "goals" {
			if i == len(static)-1 {
				return "goal"
			}
			return "goal_" + strings.Join(static[i+1:], "_")
		}
	}
	return static[len(static)-1]
}

// PosthogTracking emits one analytics event per successfully handled API
// request, keyed by the authenticated user.
func PosthogTracking(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() {
			c.Next()
			return
		}
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		c.Next()

		// Failed requests are not tracked; errors surface through logs.
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		eventName := apiEventName(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		if workspaceID := c.Param("workspace_id"); workspaceID != "" {
			props["workspace_id"] = workspaceID
		}
		if goalID := c.Param("goal_id"); goalID != "" {
			props["goal_id"] = goalID
		}
		if milestoneID := c.Param("milestone_id"); milestoneID != "" {
			props["milestone_id"] = milestoneID
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}
