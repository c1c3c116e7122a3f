package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"soup_menu_bot/internal/domain/soup"
	"soup_menu_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrInvalidSoup = fmt.Errorf("invalid soup")
var ErrInvalidLocation = fmt.Errorf("invalid location name")

type AdminService struct {
	soups           soup.Repository
	adminTelegramID int64
	loc             *time.Location
	logger          *logrus.Entry
	metrics         *metrics.Metrics
}

func NewAdminService(repo soup.Repository, adminID int64, loc *time.Location, logger *logrus.Entry, m *metrics.Metrics) *AdminService {
	return &AdminService{
		soups:           repo,
		adminTelegramID: adminID,
		loc:             loc,
		logger:          logger,
		metrics:         m,
	}
}

// Authorize checks a Telegram user against the configured admin. A zero admin id authorizes nobody.
func (s *AdminService) Authorize(performingTelegramID int64) error {
	if s.adminTelegramID == 0 || performingTelegramID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// Location returns the timezone soup dates are interpreted in.
func (s *AdminService) Location() *time.Location {
	return s.loc
}

// AddSoup validates the draft and creates the soup with its prices in one transaction.
func (s *AdminService) AddSoup(ctx context.Context, draft soup.NewSoup) (*soup.Soup, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return nil, s.reject("add_soup", fmt.Errorf("%w: name is required", ErrInvalidSoup))
	}
	if draft.Date.IsZero() {
		return nil, s.reject("add_soup", fmt.Errorf("%w: date is required", ErrInvalidSoup))
	}
	draft.Date = soup.StartOfDay(draft.Date.In(s.loc))

	seen := make(map[string]bool, len(draft.Prices))
	prices := make([]soup.LocationPrice, len(draft.Prices))
	for i, lp := range draft.Prices {
		name := strings.ToUpper(strings.TrimSpace(lp.LocationName))
		if name == "" {
			return nil, s.reject("add_soup", fmt.Errorf("%w: location name is required", ErrInvalidSoup))
		}
		if seen[name] {
			return nil, s.reject("add_soup", fmt.Errorf("%w: location %s listed twice", ErrInvalidSoup, name))
		}
		if lp.Price < 0 {
			return nil, s.reject("add_soup", fmt.Errorf("%w: negative price at %s", ErrInvalidSoup, name))
		}
		seen[name] = true
		prices[i] = soup.LocationPrice{LocationName: name, Price: lp.Price}
	}
	draft.Prices = prices

	created, err := s.soups.CreateSoup(ctx, draft)
	if err != nil {
		if errors.Is(err, soup.ErrLocationNotFound) {
			return nil, s.reject("add_soup", err)
		}
		s.metrics.RecordAdminAction("add_soup", "error")
		return nil, fmt.Errorf("failed to create soup in repository: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"soup_id":   created.ID,
		"name":      created.Name,
		"date":      created.Date.Format("2006-01-02"),
		"locations": len(created.Offers),
	}).Info("Soup created")
	s.metrics.RecordAdminAction("add_soup", "success")
	return created, nil
}

// DeleteSoup removes a soup together with its prices.
func (s *AdminService) DeleteSoup(ctx context.Context, id int64) error {
	if err := s.soups.DeleteSoup(ctx, id); err != nil {
		if errors.Is(err, soup.ErrSoupNotFound) {
			return s.reject("delete_soup", err)
		}
		s.metrics.RecordAdminAction("delete_soup", "error")
		return fmt.Errorf("failed to delete soup %d: %w", id, err)
	}
	s.logger.WithField("soup_id", id).Info("Soup deleted")
	s.metrics.RecordAdminAction("delete_soup", "success")
	return nil
}

// UpdateSoupPrice corrects the price of an existing soup at one location.
func (s *AdminService) UpdateSoupPrice(ctx context.Context, soupID int64, locationName string, price soup.Cents) error {
	locationName = strings.ToUpper(strings.TrimSpace(locationName))
	if price < 0 {
		return s.reject("update_price", fmt.Errorf("%w: negative price", ErrInvalidSoup))
	}
	if err := s.soups.UpdateSoupPrice(ctx, soupID, locationName, price); err != nil {
		if errors.Is(err, soup.ErrLocationNotFound) || errors.Is(err, soup.ErrOfferNotFound) {
			return s.reject("update_price", err)
		}
		s.metrics.RecordAdminAction("update_price", "error")
		return fmt.Errorf("failed to update price of soup %d at %s: %w", soupID, locationName, err)
	}
	s.logger.WithFields(logrus.Fields{
		"soup_id":  soupID,
		"location": locationName,
		"price":    price.String(),
	}).Info("Soup price updated")
	s.metrics.RecordAdminAction("update_price", "success")
	return nil
}

// ListSoups returns every soup, newest date first, with dates in the cafeteria's timezone.
func (s *AdminService) ListSoups(ctx context.Context) ([]*soup.Soup, error) {
	soups, err := s.soups.ListSoups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list soups: %w", err)
	}
	for _, sp := range soups {
		sp.Date = sp.Date.In(s.loc)
	}
	return soups, nil
}

func (s *AdminService) ListLocations(ctx context.Context) ([]*soup.Location, error) {
	locations, err := s.soups.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// AddLocation creates a location, or returns the existing one with the same name.
func (s *AdminService) AddLocation(ctx context.Context, name string) (*soup.Location, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return nil, s.reject("add_location", fmt.Errorf("%w: %q", ErrInvalidLocation, name))
	}
	l, err := s.soups.CreateLocation(ctx, name)
	if err != nil {
		s.metrics.RecordAdminAction("add_location", "error")
		return nil, fmt.Errorf("failed to create location %s: %w", name, err)
	}
	s.metrics.RecordAdminAction("add_location", "success")
	return l, nil
}

func (s *AdminService) reject(action string, err error) error {
	s.logger.WithError(err).WithField("action", action).Warn("Admin action rejected")
	s.metrics.RecordAdminAction(action, "rejected")
	return err
}
