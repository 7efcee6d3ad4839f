package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance/internal/aggregate"
	"attendance/internal/auth"
	"attendance/internal/dashboard"
	"attendance/internal/roster"
)

type registerRequest struct {
	RollNumber string `json:"roll_number" binding:"required,alphanum"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required"`
	Year       string `json:"year" binding:"required"`
	Semester   string `json:"semester" binding:"required"`
	Section    string `json:"section" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

// Register creates a new student roster entry.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "validation", err.Error())
		return
	}

	st := roster.Student{
		RollNumber: req.RollNumber,
		Name:       req.Name,
		Email:      req.Email,
		Password:   "12345678", // default; reset on first login is a frontend concern
		Department: req.Department,
		Year:       req.Year,
		Semester:   req.Semester,
		Section:    req.Section,
		Phone:      req.Phone,
		Role:       "student",
	}
	if err := roster.ValidateRegistration(st); err != nil {
		respond(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if err := h.roster.Create(c.Request.Context(), st); err != nil {
		if errors.Is(err, roster.ErrExists) {
			respond(c, http.StatusConflict, "exists", "Student with this roll number or email already exists.")
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Student registered successfully.",
		"student": st,
	})
}

// ListStudents returns the full roster for the admin console.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.roster.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students, "count": len(students)})
}

type updateStudentRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Department string `json:"department"`
	Year       string `json:"year"`
	Semester   string `json:"semester"`
	Section    string `json:"section"`
	Phone      string `json:"phone"`
}

// UpdateStudent edits roster fields for one student. The roll number itself
// is immutable; omitted fields are left unchanged.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "validation", err.Error())
		return
	}
	if req.Phone != "" {
		if err := roster.ValidatePhone(req.Phone); err != nil {
			respond(c, http.StatusBadRequest, "validation", err.Error())
			return
		}
	}

	updated, err := h.roster.Update(c.Request.Context(), roster.Student{
		RollNumber: c.Param("roll"),
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Year:       req.Year,
		Semester:   req.Semester,
		Section:    req.Section,
		Phone:      req.Phone,
	})
	if err != nil {
		if errors.Is(err, roster.ErrExists) {
			respond(c, http.StatusConflict, "exists", "Another student already uses this email.")
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Student updated successfully.",
		"student": updated,
	})
}

type loginRequest struct {
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email"`
	EmpID    string `json:"emp_id"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a student or faculty member and returns a signed token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "validation", "Missing required fields.")
		return
	}
	if req.Role == "student" && req.Email == "" {
		respond(c, http.StatusBadRequest, "validation", "Missing student email.")
		return
	}
	if req.Role == "faculty" && req.EmpID == "" {
		respond(c, http.StatusBadRequest, "validation", "Missing employee ID.")
		return
	}

	result, err := auth.Login(c.Request.Context(), h.roster, req.Role, req.Email, req.EmpID,
		req.Password, h.jwtIssuer, h.jwtKey, h.accessTTL)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadRole):
			respond(c, http.StatusBadRequest, "validation", "Invalid role specified.")
		case errors.Is(err, auth.ErrBadCredentials):
			respond(c, http.StatusUnauthorized, "unauthorized", "Invalid credentials.")
		default:
			fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "login": result})
}

// StudentDashboard returns the projected attendance statistics for a student.
func (h *Handler) StudentDashboard(c *gin.Context) {
	roll := c.Param("roll")
	student, err := h.roster.Get(c.Request.Context(), roll)
	if err != nil {
		fail(c, err)
		return
	}

	key := aggregate.SectionKey{
		Department: student.Department,
		Semester:   student.Semester,
		Section:    student.Section,
	}
	summary, err := h.aggregates.Summary(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, aggregate.ErrNotFound) {
			respond(c, http.StatusNotFound, "not_found", "No attendance data for this student's section yet.")
			return
		}
		fail(c, err)
		return
	}

	ledger, err := h.aggregates.Ledger(c.Request.Context(), student.RollNumber)
	if err != nil && !errors.Is(err, aggregate.ErrNotFound) {
		fail(c, err)
		return
	}
	// A missing ledger is a student with no marks yet; project zeros.

	c.JSON(http.StatusOK, gin.H{
		"student":    student,
		"attendance": dashboard.Project(ledger, summary),
	})
}
