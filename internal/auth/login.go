package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"attendance/internal/roster"
)

// Login errors, all mapped to 400/401 at the handler boundary.
var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrBadRole        = errors.New("invalid role")
)

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Email       string    `json:"email,omitempty"`
	RollNumber  string    `json:"roll_number,omitempty"`
	EmpID       string    `json:"emp_id,omitempty"`
	RedirectURL string    `json:"redirect_url"`
}

// Login authenticates a student (by email) or faculty member (by employee
// id) and issues a signed token. Passwords are compared as stored; hashing is
// handled upstream of this service.
func Login(ctx context.Context, ros roster.Store, role, email, empID, password, issuer, key string, ttl time.Duration) (*LoginResult, error) {
	var claims Claims
	var stored string

	switch role {
	case "student":
		st, err := ros.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, roster.ErrNotFound) {
				return nil, ErrBadCredentials
			}
			return nil, err
		}
		stored = st.Password
		claims = Claims{Name: st.Name, Role: st.Role, Email: st.Email, RollNumber: st.RollNumber}
	case "faculty":
		f, err := ros.GetFaculty(ctx, empID)
		if err != nil {
			if errors.Is(err, roster.ErrNotFound) {
				return nil, ErrBadCredentials
			}
			return nil, err
		}
		stored = f.Password
		claims = Claims{Name: f.Name, Role: f.Role, Email: f.Email, EmpID: f.EmpID}
	default:
		return nil, ErrBadRole
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return nil, ErrBadCredentials
	}

	token, exp, err := Issue(claims, issuer, key, ttl)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:       token,
		ExpiresAt:   exp,
		Name:        claims.Name,
		Role:        claims.Role,
		Email:       claims.Email,
		RollNumber:  claims.RollNumber,
		EmpID:       claims.EmpID,
		RedirectURL: redirectFor(claims.Role),
	}, nil
}

func redirectFor(role string) string {
	switch role {
	case "admin":
		return "/admin/dashboard"
	case "student":
		return "/student/dashboard"
	default:
		return "/"
	}
}
