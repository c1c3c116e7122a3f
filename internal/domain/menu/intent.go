package menu

import (
	"strings"
	"time"

	"soup_menu_bot/internal/domain/soup"
)

// LocationCodes is the location vocabulary in matching priority order.
var LocationCodes = []string{"hq", "hsl", "ld"}

// Intent is what a free-text message asks for. Every dimension is optional.
type Intent struct {
	AboutSoup  bool
	Today      bool
	Location   string // Uppercase location code, empty when absent
	Weekday    time.Weekday
	HasWeekday bool
	Date       time.Time // Zero unless Today or HasWeekday
}

// HasDate reports whether the message names a day.
func (i Intent) HasDate() bool {
	return !i.Date.IsZero()
}

// Extractor matches messages against the fixed location and weekday vocabularies.
// Matching is plain substring containment on the lowercased text.
type Extractor struct {
	locale Locale
	policy Policy
}

func NewExtractor(locale Locale, policy Policy) *Extractor {
	return &Extractor{locale: locale, policy: policy}
}

// ExtractLocation returns the first location code, in LocationCodes order, contained in text.
func (e *Extractor) ExtractLocation(text string) string {
	text = strings.ToLower(text)
	for _, code := range LocationCodes {
		if strings.Contains(text, code) {
			return strings.ToUpper(code)
		}
	}
	return ""
}

// ExtractWeekday returns the first weekday, Monday through Friday, named in text.
func (e *Extractor) ExtractWeekday(text string) (time.Weekday, bool) {
	text = strings.ToLower(text)
	for i, name := range e.locale.Weekdays {
		if strings.Contains(text, name) {
			return time.Monday + time.Weekday(i), true
		}
	}
	return 0, false
}

// Extract reads text relative to now. A today keyword wins over a weekday name.
func (e *Extractor) Extract(text string, now time.Time) Intent {
	lower := strings.ToLower(text)
	intent := Intent{
		AboutSoup: containsAny(lower, e.locale.SoupKeywords),
		Today:     containsAny(lower, e.locale.TodayKeywords),
		Location:  e.ExtractLocation(lower),
	}
	intent.Weekday, intent.HasWeekday = e.ExtractWeekday(lower)

	switch {
	case intent.Today:
		intent.Date = soup.StartOfDay(now)
	case intent.HasWeekday:
		intent.Date = Resolve(intent.Weekday, now, e.policy)
	}
	return intent
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
