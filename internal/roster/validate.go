package roster

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// phoneRe is the one rule validator has no tag for: Indian mobile numbers,
// 10 digits starting with 6-9.
var phoneRe = regexp.MustCompile(`^[6-9]\d{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("mobile_in", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidatePhone checks a phone number against the mobile rule.
func ValidatePhone(phone string) error {
	if err := validate.Var(phone, "mobile_in"); err != nil {
		return fmt.Errorf("invalid phone number: expected 10 digits starting with 6-9")
	}
	return nil
}

// ValidateEmail checks an email address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateRegistration checks a new student record before it is persisted:
// every field present, an alphanumeric roll number, a plausible email, and a
// valid mobile number.
func ValidateRegistration(st Student) error {
	required := map[string]string{
		"roll_number": st.RollNumber,
		"name":        st.Name,
		"email":       st.Email,
		"department":  st.Department,
		"year":        st.Year,
		"semester":    st.Semester,
		"section":     st.Section,
		"phone":       st.Phone,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if err := validate.Var(st.RollNumber, "alphanum"); err != nil {
		return fmt.Errorf("invalid roll number format")
	}
	if err := ValidateEmail(st.Email); err != nil {
		return err
	}
	return ValidatePhone(st.Phone)
}
