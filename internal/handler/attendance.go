package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance/internal/metrics"
	"attendance/internal/queue"
	"attendance/internal/session"
)

type markRequest struct {
	RollNumber string `json:"roll_number" binding:"required"`
	Token      string `json:"token" binding:"required"`
	// Optional scope echo; when present it must match the session exactly.
	Subject     string `json:"subject"`
	Period      string `json:"period"`
	FacultyName string `json:"faculty_name"`
}

// MarkAttendance records a student's attendance against a session token.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "validation", "Roll number and token are required.")
		return
	}

	echo := &session.ScopeEcho{
		Subject:     req.Subject,
		Period:      req.Period,
		FacultyName: req.FacultyName,
	}
	result, err := h.sessions.Mark(c.Request.Context(), req.RollNumber, req.Token, echo)
	if err != nil {
		metrics.MarksRejected.WithLabelValues(reason(err)).Inc()
		fail(c, err)
		return
	}

	metrics.MarksAccepted.Inc()
	h.publish(queue.EventAttendanceMarked, queue.Event{
		Token:      req.Token,
		RollNumber: result.RollNumber,
		Subject:    result.Subject,
		Department: result.Department,
		Semester:   result.Semester,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Attendance marked successfully!",
		"roll_number": result.RollNumber,
		"session": gin.H{
			"subject":      result.Subject,
			"department":   result.Department,
			"semester":     result.Semester,
			"faculty_name": result.FacultyName,
			"period":       result.Period,
		},
	})
}
