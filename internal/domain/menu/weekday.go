package menu

import (
	"fmt"
	"strings"
	"time"

	"soup_menu_bot/internal/domain/soup"
)

// Policy decides what "maandag" means when today already is Monday.
type Policy int

const (
	// IncludeToday resolves a weekday equal to today to today.
	IncludeToday Policy = iota
	// StrictlyAfterToday resolves a weekday equal to today to the same day next week.
	StrictlyAfterToday
)

func (p Policy) String() string {
	switch p {
	case IncludeToday:
		return "include_today"
	case StrictlyAfterToday:
		return "next_week"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names returned by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "include_today":
		return IncludeToday, nil
	case "next_week", "strictly_after_today":
		return StrictlyAfterToday, nil
	default:
		return IncludeToday, fmt.Errorf("unknown weekday policy %q", s)
	}
}

// Resolve returns local midnight of the next occurrence of day, counted from today.
// Past weekdays of the current week always roll over to next week.
func Resolve(day time.Weekday, today time.Time, policy Policy) time.Time {
	offset := int(day) - int(today.Weekday())
	if offset < 0 || (offset == 0 && policy == StrictlyAfterToday) {
		offset += 7
	}
	return soup.StartOfDay(today).AddDate(0, 0, offset)
}
