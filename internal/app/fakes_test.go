package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"soup_menu_bot/internal/domain/soup"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store is down")

// fakeSoupRepository is an in-memory soup.Repository using the same calendar-day bounds as Postgres.
type fakeSoupRepository struct {
	mu        sync.Mutex
	soups     []*soup.Soup
	locations []*soup.Location
	err       error
	nextID    int64
}

func newFakeSoupRepository(locations ...string) *fakeSoupRepository {
	r := &fakeSoupRepository{}
	for _, name := range locations {
		_, _ = r.CreateLocation(context.Background(), name)
	}
	return r
}

func (r *fakeSoupRepository) add(s *soup.Soup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.soups = append(r.soups, s)
}

func (r *fakeSoupRepository) SoupsForDate(_ context.Context, date time.Time) ([]*soup.Soup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*soup.Soup, 0)
	for _, s := range r.soups {
		if soup.OnDay(s.Date, date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSoupRepository) SoupsForDateAndLocation(ctx context.Context, locationName string, date time.Time) ([]*soup.Soup, error) {
	all, err := r.SoupsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]*soup.Soup, 0)
	for _, s := range all {
		if _, ok := s.OfferAt(locationName); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSoupRepository) CreateSoup(_ context.Context, draft soup.NewSoup) (*soup.Soup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s := &soup.Soup{Name: draft.Name, Vegetarian: draft.Vegetarian, Date: draft.Date}
	for _, lp := range draft.Prices {
		l := r.locationLocked(lp.LocationName)
		if l == nil {
			return nil, soup.ErrLocationNotFound
		}
		s.Offers = append(s.Offers, soup.Offer{LocationID: l.ID, LocationName: l.Name, Price: lp.Price})
	}
	r.nextID++
	s.ID = r.nextID
	r.soups = append(r.soups, s)
	return s, nil
}

func (r *fakeSoupRepository) DeleteSoup(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.soups {
		if s.ID == id {
			r.soups = append(r.soups[:i], r.soups[i+1:]...)
			return nil
		}
	}
	return soup.ErrSoupNotFound
}

func (r *fakeSoupRepository) UpdateSoupPrice(_ context.Context, soupID int64, locationName string, price soup.Cents) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locationLocked(locationName) == nil {
		return soup.ErrLocationNotFound
	}
	for _, s := range r.soups {
		if s.ID != soupID {
			continue
		}
		for i := range s.Offers {
			if s.Offers[i].LocationName == locationName {
				s.Offers[i].Price = price
				return nil
			}
		}
	}
	return soup.ErrOfferNotFound
}

func (r *fakeSoupRepository) ListSoups(_ context.Context) ([]*soup.Soup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := append([]*soup.Soup(nil), r.soups...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeSoupRepository) ListLocations(_ context.Context) ([]*soup.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*soup.Location(nil), r.locations...), nil
}

func (r *fakeSoupRepository) CreateLocation(_ context.Context, name string) (*soup.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l := r.locationLocked(name); l != nil {
		return l, nil
	}
	l := &soup.Location{ID: int64(len(r.locations) + 1), Name: name}
	r.locations = append(r.locations, l)
	return l, nil
}

func (r *fakeSoupRepository) locationLocked(name string) *soup.Location {
	for _, l := range r.locations {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func amsterdam(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return loc
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
