package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance/internal/metrics"
	"attendance/internal/queue"
	"attendance/internal/session"
)

type issueRequest struct {
	Department  string `json:"department" binding:"required"`
	Semester    string `json:"semester" binding:"required"`
	Section     string `json:"section" binding:"required"`
	Year        string `json:"year" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Period      string `json:"period" binding:"required"`
	FacultyName string `json:"faculty_name" binding:"required"`
	Block       string `json:"block" binding:"required"`
	Room        string `json:"room" binding:"required"`
}

// IssueSession creates a new period session and returns its token.
func (h *Handler) IssueSession(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	scope := session.Scope(req)
	sess, err := h.sessions.Issue(c.Request.Context(), scope)
	if err != nil {
		fail(c, err)
		return
	}

	metrics.SessionsIssued.Inc()
	h.publish(queue.EventSessionIssued, queue.Event{
		Token:      sess.Token,
		Subject:    scope.Subject,
		Department: scope.Department,
		Semester:   scope.Semester,
		Section:    scope.Section,
		At:         sess.IssuedAt,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Period saved and attendance summary updated.",
		"token":     sess.Token,
		"issued_at": sess.IssuedAt,
		"status":    sess.Status,
		"scope":     sess.Scope,
	})
}

// GetSession returns a session by token, lazily applying expiry, with the
// remaining validity for client countdowns.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Query("token"))
	if err != nil {
		fail(c, err)
		return
	}
	h.renderSession(c, sess)
}

// CurrentSession returns the most recently issued session.
func (h *Handler) CurrentSession(c *gin.Context) {
	sess, err := h.sessions.Current(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	h.renderSession(c, sess)
}

func (h *Handler) renderSession(c *gin.Context, sess *session.Session) {
	left := sess.TimeLeft(timeNow(), h.sessions.Window())
	c.JSON(http.StatusOK, gin.H{
		"token":             sess.Token,
		"issued_at":         sess.IssuedAt,
		"status":            sess.Status,
		"scope":             sess.Scope,
		"attendees":         sess.Attendees,
		"time_left_seconds": int(left.Seconds()),
	})
}

// History returns the authenticated faculty member's past sessions.
func (h *Handler) History(c *gin.Context) {
	sessions, err := h.sessions.History(c.Request.Context(), c.Query("faculty_name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// DeleteSession removes a session from history and compensates the section
// summary. Student ledgers are not touched.
func (h *Handler) DeleteSession(c *gin.Context) {
	token := c.Param("token")
	sess, err := h.sessions.Delete(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}

	metrics.SessionsDeleted.Inc()
	h.publish(queue.EventSessionDeleted, queue.Event{
		Token:      sess.Token,
		Subject:    sess.Scope.Subject,
		Department: sess.Scope.Department,
		Semester:   sess.Scope.Semester,
		Section:    sess.Scope.Section,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted and attendance counts updated."})
}
