package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"housing/internal/auth"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "housing_http_requests_total",
	Help: "HTTP requests by route and status.",
}, []string{"route", "status"})

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Register wires the route table. Every student-facing endpoint sits behind
// the bearer middleware.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(countRequests())

	r.POST("/auth/login", h.Login)

	g := r.Group("", auth.StudentAuth(h.tokens.SigningKey, h.tokens.Issuer))

	g.GET("/student/profile", h.Profile)
	g.GET("/student/attendance", h.Attendance)
	g.GET("/student/clearance", h.Clearance)

	g.GET("/services/complaints", h.ListComplaints)
	g.POST("/services/complaints", h.CreateComplaint)
	g.GET("/services/maintenance", h.ListMaintenance)
	g.POST("/services/maintenance", h.CreateMaintenance)
	g.GET("/services/permissions", h.ListPermissions)
	g.POST("/services/permissions", h.CreatePermission)

	g.GET("/activities", h.ListActivities)
	g.POST("/activities/subscribe", h.Subscribe)

	g.GET("/announcements", h.ListAnnouncements)
}
