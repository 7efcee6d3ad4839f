// Package dashboard derives read-only attendance statistics from a student
// ledger and its section summary. It holds no state of its own.
package dashboard

import (
	"math"
	"sort"
	"time"

	"attendance/internal/aggregate"
)

// SubjectStat is per-subject attendance for one student.
type SubjectStat struct {
	Subject         string  `json:"subject"`
	Percentage      float64 `json:"percentage"`
	TotalClasses    int     `json:"total_classes"`
	AttendedClasses int     `json:"attended_classes"`
	AbsentClasses   int     `json:"absent_classes"`
}

// DayStat is one calendar day's attendance.
type DayStat struct {
	Date       string  `json:"date"`
	Conducted  int     `json:"conducted"`
	Attended   int     `json:"attended"`
	Percentage float64 `json:"percentage"`
}

// WeekStat aggregates a Monday-start 7-day window.
type WeekStat struct {
	WeekStart  string  `json:"week_start"`
	Conducted  int     `json:"conducted"`
	Attended   int     `json:"attended"`
	Percentage float64 `json:"percentage"`
}

// MonthStat aggregates a calendar month.
type MonthStat struct {
	Month      string  `json:"month"`
	Conducted  int     `json:"conducted"`
	Attended   int     `json:"attended"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// Projection is the full dashboard view for one student.
type Projection struct {
	TotalClasses      int           `json:"total_classes"`
	PresentCount      int           `json:"present_count"`
	AbsentCount       int           `json:"absent_count"`
	OverallPercentage float64       `json:"overall_percentage"`
	Subjects          []SubjectStat `json:"subjects"`
	Daily             []DayStat     `json:"daily"`
	Weekly            []WeekStat    `json:"weekly"`
	Monthly           []MonthStat   `json:"monthly"`
}

// Project computes the dashboard for a ledger against its section summary.
// ledger may be nil for a student with no marks yet; every conducted class
// then counts as absent. Dates present only in the summary contribute zero to
// the numerator but keep their denominator, so a fully missed day reads 0%,
// not "no data". All percentages are rounded to one decimal place.
func Project(ledger *aggregate.StudentLedger, summary *aggregate.SectionSummary) Projection {
	attended := func(day string) int {
		if ledger == nil {
			return 0
		}
		return ledger.Dates[day]
	}

	p := Projection{
		TotalClasses: summary.TotalConducted,
	}
	if ledger != nil {
		p.PresentCount = ledger.TotalAttended
	}
	p.AbsentCount = p.TotalClasses - p.PresentCount
	p.OverallPercentage = percentage(p.PresentCount, p.TotalClasses)

	// Per-subject stats are driven by the summary's subject set, so a subject
	// the student never attended still appears at 0%.
	subjects := make([]string, 0, len(summary.Subjects))
	for name := range summary.Subjects {
		subjects = append(subjects, name)
	}
	sort.Strings(subjects)
	for _, name := range subjects {
		total := summary.Subjects[name]
		got := 0
		if ledger != nil {
			got = ledger.Subjects[name]
		}
		p.Subjects = append(p.Subjects, SubjectStat{
			Subject:         name,
			Percentage:      percentage(got, total),
			TotalClasses:    total,
			AttendedClasses: got,
			AbsentClasses:   total - got,
		})
	}

	days := make([]string, 0, len(summary.Dates))
	for day := range summary.Dates {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		conducted := summary.Dates[day]
		got := attended(day)
		p.Daily = append(p.Daily, DayStat{
			Date:       day,
			Conducted:  conducted,
			Attended:   got,
			Percentage: percentage(got, conducted),
		})
	}

	p.Weekly = weeklyBuckets(days, summary, attended)
	p.Monthly = monthlyBuckets(days, summary, attended)
	return p
}

// weeklyBuckets groups days into Monday-start windows spanning the full
// recorded range, summing numerator and denominator before dividing.
func weeklyBuckets(days []string, summary *aggregate.SectionSummary, attended func(string) int) []WeekStat {
	if len(days) == 0 {
		return nil
	}
	first, err := time.Parse(aggregate.DayFormat, days[0])
	if err != nil {
		return nil
	}
	last, err := time.Parse(aggregate.DayFormat, days[len(days)-1])
	if err != nil {
		return nil
	}

	var weeks []WeekStat
	for start := mondayOf(first); !start.After(last); start = start.AddDate(0, 0, 7) {
		ws := WeekStat{WeekStart: start.Format(aggregate.DayFormat)}
		for i := 0; i < 7; i++ {
			day := start.AddDate(0, 0, i).Format(aggregate.DayFormat)
			ws.Conducted += summary.Dates[day]
			ws.Attended += attended(day)
		}
		ws.Percentage = percentage(ws.Attended, ws.Conducted)
		weeks = append(weeks, ws)
	}
	return weeks
}

// monthlyBuckets groups days by calendar year-month.
func monthlyBuckets(days []string, summary *aggregate.SectionSummary, attended func(string) int) []MonthStat {
	grouped := make(map[string]*MonthStat)
	var order []string
	for _, day := range days {
		month := day[:7]
		ms, ok := grouped[month]
		if !ok {
			ms = &MonthStat{Month: month}
			grouped[month] = ms
			order = append(order, month)
		}
		ms.Conducted += summary.Dates[day]
		ms.Attended += attended(day)
	}
	var months []MonthStat
	for _, month := range order {
		ms := grouped[month]
		ms.Absent = ms.Conducted - ms.Attended
		ms.Percentage = percentage(ms.Attended, ms.Conducted)
		months = append(months, *ms)
	}
	return months
}

// mondayOf returns the Monday of the week containing d.
func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// percentage is 100*num/den rounded to one decimal, 0 when den is 0.
func percentage(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*1000) / 10
}
