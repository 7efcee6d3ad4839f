package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func validStudent() Student {
	return Student{
		RollNumber: "21CS001",
		Name:       "Asha",
		Email:      "Asha@College.edu",
		Department: "CSE",
		Year:       "3rd",
		Semester:   "sem3",
		Section:    "secA",
		Phone:      "9876543210",
	}
}

func TestValidateRegistration(t *testing.T) {
	require.NoError(t, ValidateRegistration(validStudent()))

	missing := validStudent()
	missing.Name = "   "
	require.EqualError(t, ValidateRegistration(missing), "name is required")

	badRoll := validStudent()
	badRoll.RollNumber = "21-CS-001"
	require.EqualError(t, ValidateRegistration(badRoll), "invalid roll number format")

	badRoll.RollNumber = "21_CS_001"
	require.Error(t, ValidateRegistration(badRoll))

	badEmail := validStudent()
	badEmail.Email = "asha.college.edu"
	require.EqualError(t, ValidateRegistration(badEmail), "invalid email address")

	badPhone := validStudent()
	badPhone.Phone = "1234567890"
	require.Error(t, ValidateRegistration(badPhone))

	shortPhone := validStudent()
	shortPhone.Phone = "98765"
	require.Error(t, ValidateRegistration(shortPhone))
}

func TestValidatePhoneAndEmail(t *testing.T) {
	require.NoError(t, ValidatePhone("9876543210"))
	require.Error(t, ValidatePhone("1234567890"))
	require.Error(t, ValidatePhone("98765abcde"))

	require.NoError(t, ValidateEmail("asha@college.edu"))
	require.Error(t, ValidateEmail("asha.college.edu"))
}

func TestMemStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	require.NoError(t, m.Create(ctx, validStudent()))

	// Lookup is case-insensitive on roll number.
	st, err := m.Get(ctx, "21cs001")
	require.NoError(t, err)
	require.Equal(t, "Asha", st.Name)
	require.Equal(t, "asha@college.edu", st.Email)
	require.False(t, st.CreatedAt.IsZero())

	_, err = m.Get(ctx, "unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.Create(ctx, validStudent()))

	dup := validStudent()
	dup.RollNumber = "21cs001"
	require.ErrorIs(t, m.Create(ctx, dup), ErrExists)

	sameEmail := validStudent()
	sameEmail.RollNumber = "21CS099"
	require.ErrorIs(t, m.Create(ctx, sameEmail), ErrExists)
}

func TestMemStoreGetByEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.Create(ctx, validStudent()))

	st, err := m.GetByEmail(ctx, "ASHA@college.EDU")
	require.NoError(t, err)
	require.Equal(t, "21CS001", st.RollNumber)

	_, err = m.GetByEmail(ctx, "nobody@college.edu")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreList(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.Create(ctx, validStudent()))

	second := validStudent()
	second.RollNumber = "21CS002"
	second.Email = "bala@college.edu"
	require.NoError(t, m.Create(ctx, second))

	students, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "21CS001", students[0].RollNumber)
	require.Equal(t, "21CS002", students[1].RollNumber)
}

func TestMemStoreUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.Create(ctx, validStudent()))

	updated, err := m.Update(ctx, Student{RollNumber: "21cs001", Name: "Asha R", Phone: "9876500000"})
	require.NoError(t, err)
	require.Equal(t, "Asha R", updated.Name)
	require.Equal(t, "9876500000", updated.Phone)
	// Omitted fields are left alone.
	require.Equal(t, "asha@college.edu", updated.Email)
	require.Equal(t, "CSE", updated.Department)

	_, err = m.Update(ctx, Student{RollNumber: "21CS099", Name: "Ghost"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreUpdateRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.Create(ctx, validStudent()))

	second := validStudent()
	second.RollNumber = "21CS002"
	second.Email = "bala@college.edu"
	require.NoError(t, m.Create(ctx, second))

	_, err := m.Update(ctx, Student{RollNumber: "21CS002", Email: "ASHA@college.edu"})
	require.ErrorIs(t, err, ErrExists)

	// Re-submitting your own email is not a collision.
	_, err = m.Update(ctx, Student{RollNumber: "21CS002", Email: "bala@college.edu"})
	require.NoError(t, err)
}

func TestMemStoreFaculty(t *testing.T) {
	m := NewMemStore()
	m.AddFaculty(Faculty{EmpID: "FAC001", Name: "Dr. Rao", Role: "faculty"})

	f, err := m.GetFaculty(context.Background(), "FAC001")
	require.NoError(t, err)
	require.Equal(t, "Dr. Rao", f.Name)

	_, err = m.GetFaculty(context.Background(), "FAC999")
	require.ErrorIs(t, err, ErrNotFound)
}
