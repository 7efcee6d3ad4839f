package aggregate

import (
	"context"
	"sync"
)

// MemStore is an in-memory aggregate store for dev mode and tests.
type MemStore struct {
	mu        sync.Mutex
	summaries map[SectionKey]*SectionSummary
	ledgers   map[string]*StudentLedger
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		summaries: make(map[SectionKey]*SectionSummary),
		ledgers:   make(map[string]*StudentLedger),
	}
}

// IncrementSummary adds one conducted class for (section, subject, day).
func (m *MemStore) IncrementSummary(_ context.Context, key SectionKey, subject, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.summaries[key]
	if !ok {
		sm = &SectionSummary{Key: key, Subjects: make(map[string]int), Dates: make(map[string]int)}
		m.summaries[key] = sm
	}
	sm.TotalConducted++
	sm.Subjects[subject]++
	sm.Dates[day]++
	return nil
}

// DecrementSummary removes one conducted class, flooring at zero.
func (m *MemStore) DecrementSummary(_ context.Context, key SectionKey, subject, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.summaries[key]
	if !ok {
		return ErrNotFound
	}
	if sm.TotalConducted > 0 {
		sm.TotalConducted--
	}
	if sm.Subjects[subject] > 0 {
		sm.Subjects[subject]--
	}
	if sm.Dates[day] > 0 {
		sm.Dates[day]--
	}
	if sm.Dates[day] == 0 {
		delete(sm.Dates, day)
	}
	return nil
}

// GetSummary returns a copy of the summary for a section.
func (m *MemStore) GetSummary(_ context.Context, key SectionKey) (*SectionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.summaries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copySummary(sm), nil
}

// IncrementLedger adds one attended class for (student, subject, day).
func (m *MemStore) IncrementLedger(_ context.Context, st NewStudent, subject, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	led, ok := m.ledgers[st.RollNumber]
	if !ok {
		led = &StudentLedger{
			RollNumber: st.RollNumber,
			Name:       st.Name,
			Department: st.Department,
			Semester:   st.Semester,
			Section:    st.Section,
			Subjects:   make(map[string]int),
			Dates:      make(map[string]int),
		}
		m.ledgers[st.RollNumber] = led
	}
	led.TotalAttended++
	led.Subjects[subject]++
	led.Dates[day]++
	return nil
}

// GetLedger returns a copy of a student's ledger.
func (m *MemStore) GetLedger(_ context.Context, rollNumber string) (*StudentLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	led, ok := m.ledgers[rollNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return copyLedger(led), nil
}

func copySummary(sm *SectionSummary) *SectionSummary {
	cp := *sm
	cp.Subjects = copyMap(sm.Subjects)
	cp.Dates = copyMap(sm.Dates)
	return &cp
}

func copyLedger(led *StudentLedger) *StudentLedger {
	cp := *led
	cp.Subjects = copyMap(led.Subjects)
	cp.Dates = copyMap(led.Dates)
	return &cp
}

func copyMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
