package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"housing/internal/auth"
	"housing/internal/housing"
	"housing/internal/queue"
)

// TokenConfig carries what the login handler needs to issue JWTs.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler serves the student-facing REST API.
type Handler struct {
	svc    *housing.Service
	events queue.Queue // nil disables event publishing
	tokens TokenConfig
}

// New creates a handler.
func New(svc *housing.Service, events queue.Queue, tokens TokenConfig) *Handler {
	return &Handler{svc: svc, events: events, tokens: tokens}
}

// ---------- Envelope ----------

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func respondErr(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// fail maps domain errors onto the response taxonomy. Store-level detail is
// logged, never sent to the client.
func fail(c *gin.Context, err error) {
	var vErr *housing.ValidationError
	var fullErr *housing.ActivityFullError
	switch {
	case errors.As(err, &vErr):
		respondErr(c, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &fullErr):
		respondErr(c, http.StatusBadRequest, fullErr.Error())
	case errors.Is(err, housing.ErrNotFound):
		respondErr(c, http.StatusNotFound, "not found")
	case errors.Is(err, housing.ErrNoRoomAssigned):
		respondErr(c, http.StatusNotFound, "student is not assigned to a room")
	case errors.Is(err, housing.ErrAlreadySubscribed):
		respondErr(c, http.StatusConflict, "already subscribed to this activity")
	case errors.Is(err, housing.ErrInvalidCredentials):
		respondErr(c, http.StatusUnauthorized, "invalid credentials")
	default:
		log.Printf("internal error: %v", err)
		respondErr(c, http.StatusInternalServerError, "internal server error")
	}
}

func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	return p, ok
}

// publish sends a worker event; failures are logged, never surfaced.
func (h *Handler) publish(c *gin.Context, typ, body string) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(c.Request.Context(), queue.Message{Type: typ, Body: []byte(body)}); err != nil {
		log.Printf("event publish failed (%s): %v", typ, err)
	}
}

// ---------- Auth ----------

type loginRequest struct {
	NationalID string `json:"national_id"`
	Password   string `json:"password"`
}

// Login verifies credentials and issues an access/refresh token pair whose
// subject is the student id.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.Login(c.Request.Context(), req.NationalID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	pair, err := auth.Issue(u.StudentID, u.Role, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.AccessTTL, h.tokens.RefreshTTL)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.AccessExp.Unix(),
	})
}

// ---------- Student ----------

func (h *Handler) Profile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	profile, err := h.svc.Profile(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *Handler) Attendance(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	logs, err := h.svc.Attendance(c.Request.Context(), p.ID, housing.AttendanceFilter{
		Month: c.Query("month"),
		Date:  c.Query("date"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, logs)
}

func (h *Handler) Clearance(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, err := h.svc.Clearance(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// ---------- Services ----------

func (h *Handler) ListComplaints(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.svc.Complaints(c.Request.Context(), p.ID, housing.ComplaintFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, items)
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in housing.ComplaintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateComplaint(c.Request.Context(), p.ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "complaint.created", created.ID)
	respond(c, http.StatusCreated, created)
}

func (h *Handler) ListMaintenance(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.svc.Maintenance(c.Request.Context(), p.ID, housing.MaintenanceFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, items)
}

func (h *Handler) CreateMaintenance(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in housing.MaintenanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateMaintenance(c.Request.Context(), p.ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "maintenance.created", created.ID)
	respond(c, http.StatusCreated, created)
}

func (h *Handler) ListPermissions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.svc.Permissions(c.Request.Context(), p.ID, housing.PermissionFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, items)
}

func (h *Handler) CreatePermission(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in housing.PermissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreatePermission(c.Request.Context(), p.ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// ---------- Activities ----------

func (h *Handler) ListActivities(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	items, err := h.svc.Activities(c.Request.Context(), p.ID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, items)
}

type subscribeRequest struct {
	ActivityID string `json:"activity_id"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Subscribe(c.Request.Context(), p.ID, req.ActivityID)
	if err != nil {
		fail(c, err)
		return
	}
	h.publish(c, "subscription.created", sub.ID)
	respond(c, http.StatusCreated, sub)
}

// ---------- Announcements ----------

func (h *Handler) ListAnnouncements(c *gin.Context) {
	if _, ok := principal(c); !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	items, err := h.svc.Announcements(c.Request.Context(), housing.AnnouncementFilter{
		Category: c.Query("category"),
		Limit:    limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, items)
}
