package app

import (
	"context"
	"fmt"
	"time"

	"soup_menu_bot/internal/domain/menu"
	"soup_menu_bot/internal/domain/soup"
	"soup_menu_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Clock returns the current time in the cafeteria's timezone.
type Clock func() time.Time

// ClockIn returns a Clock reading the wall clock in loc.
func ClockIn(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// Intent labels used for logging and metrics.
const (
	IntentHelp        = "help"
	IntentPrompt      = "prompt"
	IntentToday       = "today"
	IntentDay         = "day"
	IntentLocation    = "location"
	IntentDayLocation = "day_location"
	IntentError       = "error"
)

// QueryService answers free-text soup questions for one platform and locale.
type QueryService struct {
	soups     soup.Repository
	extractor *menu.Extractor
	formatter *menu.Formatter
	now       Clock
	platform  string
	logger    *logrus.Entry
	metrics   *metrics.Metrics
}

func NewQueryService(
	repo soup.Repository,
	extractor *menu.Extractor,
	formatter *menu.Formatter,
	now Clock,
	platform string,
	logger *logrus.Entry,
	m *metrics.Metrics,
) *QueryService {
	return &QueryService{
		soups:     repo,
		extractor: extractor,
		formatter: formatter,
		now:       now,
		platform:  platform,
		logger:    logger.WithField("platform", platform),
		metrics:   m,
	}
}

// Locale returns the locale replies are written in.
func (s *QueryService) Locale() menu.Locale {
	return s.formatter.Locale()
}

// Now returns the current time in the cafeteria's timezone.
func (s *QueryService) Now() time.Time {
	return s.now()
}

// Answer turns a chat message into a reply. Store failures become a localized apology.
func (s *QueryService) Answer(ctx context.Context, text string) menu.Reply {
	now := s.now()
	intent := s.extractor.Extract(text, now)
	msgs := s.formatter.Locale().Messages

	var (
		label   string
		listing menu.Listing
		err     error
	)
	switch {
	case !intent.AboutSoup:
		s.record(IntentHelp)
		return s.formatter.Message(msgs.Help)
	case intent.Today:
		label = IntentToday
		listing, err = s.Listing(ctx, intent.Date, intent.Location)
		listing.Today = intent.Location == ""
	case intent.HasWeekday && intent.Location == "":
		label = IntentDay
		listing, err = s.Listing(ctx, intent.Date, "")
	case intent.HasWeekday:
		label = IntentDayLocation
		listing, err = s.Listing(ctx, intent.Date, intent.Location)
	case intent.Location != "":
		label = IntentLocation
		listing, err = s.Listing(ctx, soup.StartOfDay(now), intent.Location)
	default:
		s.record(IntentPrompt)
		return s.formatter.Message(msgs.LocationPrompt)
	}

	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"intent":   label,
			"location": intent.Location,
			"date":     intent.Date.Format("2006-01-02"),
		}).Error("Failed to answer soup question")
		s.record(IntentError)
		return s.formatter.Message(msgs.Apology)
	}

	s.logger.WithFields(logrus.Fields{
		"intent":   label,
		"location": listing.Location,
		"date":     listing.Date.Format("2006-01-02"),
		"soups":    len(listing.Soups),
	}).Debug("Answered soup question")
	s.record(label)
	return s.formatter.Format(listing)
}

// Listing looks up the soups of date's calendar day, optionally at one location.
func (s *QueryService) Listing(ctx context.Context, date time.Time, location string) (menu.Listing, error) {
	listing := menu.Listing{Date: soup.StartOfDay(date), Location: location}

	var err error
	if location == "" {
		listing.Soups, err = s.soups.SoupsForDate(ctx, date)
		if err != nil {
			s.metrics.RecordStoreError("soups_for_date")
			return listing, fmt.Errorf("failed to get soups for %s: %w", date.Format("2006-01-02"), err)
		}
		return listing, nil
	}

	listing.Soups, err = s.soups.SoupsForDateAndLocation(ctx, location, date)
	if err != nil {
		s.metrics.RecordStoreError("soups_for_date_and_location")
		return listing, fmt.Errorf("failed to get soups for %s at %s: %w", date.Format("2006-01-02"), location, err)
	}
	return listing, nil
}

// Document builds the rendering-neutral form of a listing, for surfaces that draw it themselves.
func (s *QueryService) Document(l menu.Listing) menu.Document {
	return s.formatter.Document(l)
}

// DailyMessage renders today's aggregate listing for every location.
func (s *QueryService) DailyMessage(ctx context.Context) (menu.Reply, error) {
	listing, err := s.Listing(ctx, s.now(), "")
	if err != nil {
		return menu.Reply{}, err
	}
	listing.Today = true
	return s.formatter.Format(listing), nil
}

func (s *QueryService) record(intent string) {
	s.metrics.RecordMessage(s.platform, intent)
}
