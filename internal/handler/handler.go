package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendance/internal/aggregate"
	"attendance/internal/auth"
	"attendance/internal/geo"
	"attendance/internal/queue"
	"attendance/internal/roster"
	"attendance/internal/session"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Handler wires the domain services to HTTP.
type Handler struct {
	sessions   *session.Service
	aggregates *aggregate.Maintainer
	roster     roster.Store
	rooms      geo.RoomTable
	events     queue.Queue

	jwtIssuer string
	jwtKey    string
	accessTTL time.Duration
}

// New creates a handler. rooms may be nil when location checks are not
// configured; events may be nil in tests.
func New(sessions *session.Service, aggregates *aggregate.Maintainer, ros roster.Store,
	rooms geo.RoomTable, events queue.Queue, jwtIssuer, jwtKey string, accessTTL time.Duration) *Handler {
	return &Handler{
		sessions:   sessions,
		aggregates: aggregates,
		roster:     ros,
		rooms:      rooms,
		events:     events,
		jwtIssuer:  jwtIssuer,
		jwtKey:     jwtKey,
		accessTTL:  accessTTL,
	}
}

// Routes registers all endpoints on r.
func (h *Handler) Routes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/login", h.Login)
	api.POST("/register", h.Register)
	api.POST("/location/verify", h.VerifyLocation)

	api.GET("/sessions", h.GetSession)
	api.GET("/sessions/latest", h.CurrentSession)
	api.POST("/attendance", h.MarkAttendance)
	api.GET("/students/:roll/dashboard", h.StudentDashboard)

	faculty := api.Group("", auth.Require(h.jwtKey, h.jwtIssuer), auth.RequireRole("faculty", "admin"))
	faculty.POST("/sessions", h.IssueSession)
	faculty.DELETE("/sessions/:token", h.DeleteSession)
	faculty.GET("/sessions/history", h.History)
	faculty.GET("/students", h.ListStudents)
	faculty.PUT("/students/:roll", h.UpdateStudent)
}

func (h *Handler) publish(eventType string, evt queue.Event) {
	if h.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := queue.PublishEvent(ctx, h.events, eventType, evt); err != nil {
		log.Printf("event publish failed (%s): %v", eventType, err)
	}
}

// fail writes the stable error envelope for a domain error.
func fail(c *gin.Context, err error) {
	switch {
	case session.IsValidation(err):
		respond(c, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, session.ErrNotFound):
		respond(c, http.StatusNotFound, "not_found", "Invalid or non-existent session token.")
	case errors.Is(err, roster.ErrNotFound):
		respond(c, http.StatusNotFound, "not_found", "Student not found.")
	case errors.Is(err, session.ErrExpired):
		respond(c, http.StatusForbidden, "expired", "This attendance session has expired.")
	case errors.Is(err, session.ErrIneligible):
		respond(c, http.StatusForbidden, "ineligible", "Student does not belong to this session's department, semester, or section.")
	case errors.Is(err, session.ErrAlreadyMarked):
		respond(c, http.StatusConflict, "already_marked", "Attendance already marked for this session.")
	case errors.Is(err, session.ErrConflict):
		respond(c, http.StatusServiceUnavailable, "conflict", "Storage conflict, please retry.")
	default:
		log.Printf("internal error: %v", err)
		respond(c, http.StatusInternalServerError, "internal", "Internal server error.")
	}
}

func respond(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"status": "error", "code": code, "message": message})
}

// reason returns the metrics label for a rejected mark.
func reason(err error) string {
	switch {
	case session.IsValidation(err):
		return "validation"
	case errors.Is(err, session.ErrNotFound), errors.Is(err, roster.ErrNotFound):
		return "not_found"
	case errors.Is(err, session.ErrExpired):
		return "expired"
	case errors.Is(err, session.ErrIneligible):
		return "ineligible"
	case errors.Is(err, session.ErrAlreadyMarked):
		return "already_marked"
	default:
		return "internal"
	}
}
