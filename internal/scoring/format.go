package scoring

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// InconsistentDatePenalty is applied when slash and word date styles are mixed
	InconsistentDatePenalty = -0.05
	// minDatesForPenalty is the number of dates that must be exceeded before mixing is penalized
	minDatesForPenalty = 2
)

// FormatPenalty returns InconsistentDatePenalty when the resume mixes
// slash-style ("05/2018") and word-style ("Jan 2017") dates across more than
// two dates, and 0 otherwise. "Present" and "Current" are ignored.
func FormatPenalty(r *types.Resume) float64 {
	if r == nil {
		return 0
	}

	dates := collectDates(r)
	if len(dates) <= minDatesForPenalty {
		return 0
	}

	var slash, word bool
	for _, d := range dates {
		if strings.Contains(d, "/") {
			slash = true
		}
		if strings.IndexFunc(d, unicode.IsLetter) >= 0 {
			word = true
		}
	}

	if slash && word {
		return InconsistentDatePenalty
	}
	return 0
}

func collectDates(r *types.Resume) []string {
	var dates []string
	add := func(d string) {
		d = strings.TrimSpace(d)
		if d == "" || isOngoing(d) {
			return
		}
		dates = append(dates, d)
	}

	for _, edu := range r.Education {
		add(edu.GraduationDate)
		add(edu.StartDate)
		add(edu.EndDate)
	}
	for _, exp := range r.Experience {
		add(exp.StartDate)
		add(exp.EndDate)
	}
	return dates
}

func isOngoing(d string) bool {
	return strings.EqualFold(d, "present") || strings.EqualFold(d, "current")
}
