// Package review implements the spaced-repetition scheduling rules:
// which words are due today and how the next review date advances.
package review

import (
	"time"

	"wordtrail/internal/models"
)

// Intervals is the fixed review ladder in days, indexed by review count.
// Words past the last rung stay on it.
var Intervals = []int{1, 3, 7, 14, 30}

// dateOnly truncates a time to its calendar date in local time
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDue reports whether a word is eligible for review today.
// All four conditions must hold: the word is marked learned, it has at
// least one user-authored sentence, a next review date is set, and that
// date (time of day ignored) is today or earlier. A word missing any
// one condition is not due no matter how overdue it looks.
func IsDue(w *models.Word, today time.Time) bool {
	if !w.Learned {
		return false
	}
	if !w.HasSentences() {
		return false
	}
	if w.NextReviewAt == nil {
		return false
	}
	return !dateOnly(*w.NextReviewAt).After(dateOnly(today))
}

// DueWords filters a word list down to the words due for review today.
// Soft-deleted words are never due.
func DueWords(words []models.Word, today time.Time) []models.Word {
	var due []models.Word
	for i := range words {
		if words[i].Deleted {
			continue
		}
		if IsDue(&words[i], today) {
			due = append(due, words[i])
		}
	}
	return due
}

// Advance records a successful review: the next review date moves along
// the interval ladder indexed by the current review count, the review
// count increments, and the retry counter and skip flag reset.
func Advance(w *models.Word, now time.Time) {
	idx := w.ReviewCount
	if idx >= len(Intervals) {
		idx = len(Intervals) - 1
	}
	next := dateOnly(now).AddDate(0, 0, Intervals[idx])
	w.NextReviewAt = &next
	w.ReviewCount++
	w.RetryCount = 0
	w.Skipped = false
	w.UpdatedAt = now
}

// Retry records a failed attempt. The retry counter increments; the
// next review date does not move.
func Retry(w *models.Word, now time.Time) {
	w.RetryCount++
	w.UpdatedAt = now
}

// Skip defers a word to the next calendar day and marks it skipped.
func Skip(w *models.Word, now time.Time) {
	next := dateOnly(now).AddDate(0, 0, 1)
	w.NextReviewAt = &next
	w.Skipped = true
	w.UpdatedAt = now
}
