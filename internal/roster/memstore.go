package roster

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory roster for dev mode and tests.
type MemStore struct {
	mu       sync.RWMutex
	students map[string]Student // keyed by lowercase roll number
	faculty  map[string]Faculty
}

// NewMemStore creates an empty in-memory roster.
func NewMemStore() *MemStore {
	return &MemStore{
		students: make(map[string]Student),
		faculty:  make(map[string]Faculty),
	}
}

// Get returns the student for a roll number.
func (m *MemStore) Get(_ context.Context, rollNumber string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.students[strings.ToLower(rollNumber)]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

// GetByEmail returns the student for an email address.
func (m *MemStore) GetByEmail(_ context.Context, email string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(email)
	for _, st := range m.students {
		if st.Email == email {
			return &st, nil
		}
	}
	return nil, ErrNotFound
}

// Create inserts a new student record.
func (m *MemStore) Create(_ context.Context, st Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(st.RollNumber)
	if _, ok := m.students[key]; ok {
		return ErrExists
	}
	st.Email = strings.ToLower(st.Email)
	for _, existing := range m.students {
		if existing.Email == st.Email {
			return ErrExists
		}
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	m.students[key] = st
	return nil
}

// List returns every student, ordered by roll number.
func (m *MemStore) List(_ context.Context) ([]Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.students))
	for k := range m.students {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]Student, 0, len(keys))
	for _, k := range keys {
		res = append(res, m.students[k])
	}
	return res, nil
}

// Update applies the non-empty fields of st to the stored record.
func (m *MemStore) Update(_ context.Context, st Student) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(st.RollNumber)
	cur, ok := m.students[key]
	if !ok {
		return nil, ErrNotFound
	}
	if st.Email != "" {
		email := strings.ToLower(st.Email)
		for k, other := range m.students {
			if k != key && other.Email == email {
				return nil, ErrExists
			}
		}
		cur.Email = email
	}
	if st.Name != "" {
		cur.Name = st.Name
	}
	if st.Department != "" {
		cur.Department = st.Department
	}
	if st.Year != "" {
		cur.Year = st.Year
	}
	if st.Semester != "" {
		cur.Semester = st.Semester
	}
	if st.Section != "" {
		cur.Section = st.Section
	}
	if st.Phone != "" {
		cur.Phone = st.Phone
	}
	m.students[key] = cur
	return &cur, nil
}

// GetFaculty returns a faculty record by employee id.
func (m *MemStore) GetFaculty(_ context.Context, empID string) (*Faculty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.faculty[empID]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// AddFaculty seeds a faculty record.
func (m *MemStore) AddFaculty(f Faculty) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faculty[f.EmpID] = f
}
