package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"soup_menu_bot/internal/domain/menu"
	"soup_menu_bot/internal/domain/soup"
	"soup_menu_bot/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryService(repo soup.Repository, now time.Time, m *metrics.Metrics) *QueryService {
	return NewQueryService(
		repo,
		menu.NewExtractor(menu.Dutch, menu.IncludeToday),
		menu.NewFormatter(menu.Dutch, menu.TextRenderer{}),
		fixedClock(now),
		"telegram",
		testLogger(),
		m,
	)
}

func tomatensoep(date time.Time) *soup.Soup {
	return &soup.Soup{
		Name:       "Tomatensoep",
		Vegetarian: false,
		Date:       soup.StartOfDay(date),
		Offers:     []soup.Offer{{LocationName: "HQ", Price: 250}, {LocationName: "HSL", Price: 275}},
	}
}

func TestQueryService_TomatensoepAtHQ(t *testing.T) {
	loc := amsterdam(t)
	now := time.Date(2024, 3, 18, 11, 0, 0, 0, loc)
	repo := newFakeSoupRepository("HQ", "HSL", "LD")
	repo.add(tomatensoep(now))
	svc := newTestQueryService(repo, now, nil)

	listing, err := svc.Listing(context.Background(), now, "HQ")
	require.NoError(t, err)
	require.Len(t, listing.Soups, 1)
	offer, ok := listing.Soups[0].OfferAt("HQ")
	require.True(t, ok)
	assert.Equal(t, soup.Cents(250), offer.Price)

	reply := svc.Answer(context.Background(), "Wat is de soep vandaag bij HQ?")
	assert.Equal(t, "🍜 Soepen bij HQ - 18-3-2024\n\nTomatensoep\nPrijs: €2.50\n🥩 Niet vegetarisch", reply.Text)
}

func TestQueryService_Answer(t *testing.T) {
	loc := amsterdam(t)
	now := time.Date(2024, 3, 20, 11, 0, 0, 0, loc) // Wednesday
	repo := newFakeSoupRepository("HQ", "HSL", "LD")
	repo.add(tomatensoep(now))
	repo.add(&soup.Soup{
		Name: "Groentesoep", Vegetarian: true, Date: time.Date(2024, 3, 25, 0, 0, 0, 0, loc),
		Offers: []soup.Offer{{LocationName: "LD", Price: 250}},
	})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newTestQueryService(repo, now, m)
	msgs := menu.Dutch.Messages

	tests := []struct {
		name       string
		text       string
		wantPrefix string
		intent     string
	}{
		{"help", "hallo", msgs.Help, IntentHelp},
		{"prompt", "welke soep?", msgs.LocationPrompt, IntentPrompt},
		{"today everywhere", "soep vandaag", "🍜 Alle soepen voor 20-3-2024", IntentToday},
		{"today at location", "soep vandaag bij hsl", "🍜 Soepen bij HSL - 20-3-2024", IntentToday},
		{"weekday", "soep op maandag", "🍜 Soepen voor 25-3-2024\n\nGroentesoep", IntentDay},
		{"weekday at location", "soep maandag bij LD", "🍜 Soepen bij LD - 25-3-2024", IntentDayLocation},
		{"location means today", "soep bij HQ", "🍜 Soepen bij HQ - 20-3-2024", IntentLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := svc.Answer(context.Background(), tt.text)
			assert.True(t, strings.HasPrefix(reply.Text, tt.wantPrefix), reply.Text)
		})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("telegram", IntentToday)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("telegram", IntentHelp)))
}

func TestQueryService_NoSoup(t *testing.T) {
	loc := amsterdam(t)
	now := time.Date(2024, 3, 20, 11, 0, 0, 0, loc)
	repo := newFakeSoupRepository("HQ", "HSL", "LD")
	repo.add(tomatensoep(now))
	svc := newTestQueryService(repo, now, nil)

	reply := svc.Answer(context.Background(), "soep vandaag bij LD")
	assert.Equal(t, "Sorry, er zijn geen soepen beschikbaar bij LD op 20-3-2024.", reply.Text)

	reply = svc.Answer(context.Background(), "soep op vrijdag")
	assert.Equal(t, "Sorry, er zijn geen soepen beschikbaar op 22-3-2024.", reply.Text)

	empty := newTestQueryService(newFakeSoupRepository("HQ"), now, nil)
	reply = empty.Answer(context.Background(), "soep vandaag")
	assert.Equal(t, "Sorry, ik heb geen soep informatie voor 20-3-2024.", reply.Text)

	daily, err := empty.DailyMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sorry, ik heb geen soep informatie voor 20-3-2024.", daily.Text)
}

func TestQueryService_StoreErrorBecomesApology(t *testing.T) {
	now := time.Date(2024, 3, 20, 11, 0, 0, 0, amsterdam(t))
	repo := newFakeSoupRepository()
	repo.err = errStoreDown
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newTestQueryService(repo, now, m)

	reply := svc.Answer(context.Background(), "soep vandaag bij HQ")
	assert.Equal(t, menu.Dutch.Messages.Apology, reply.Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("soups_for_date_and_location")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues("telegram", IntentError)))

	_, err := svc.DailyMessage(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestQueryService_DayBoundary(t *testing.T) {
	loc := amsterdam(t)
	day := time.Date(2024, 3, 18, 0, 0, 0, 0, loc)
	repo := newFakeSoupRepository("HQ")
	repo.add(&soup.Soup{Name: "Tomatensoep", Date: day, Offers: []soup.Offer{{LocationName: "HQ", Price: 250}}})
	repo.add(&soup.Soup{Name: "Linzensoep", Date: day.AddDate(0, 0, 1), Offers: []soup.Offer{{LocationName: "HQ", Price: 250}}})
	svc := newTestQueryService(repo, day, nil)
	ctx := context.Background()

	names := func(at time.Time) []string {
		listing, err := svc.Listing(ctx, at, "")
		require.NoError(t, err)
		var out []string
		for _, s := range listing.Soups {
			out = append(out, s.Name)
		}
		return out
	}

	first := names(day)
	last := names(time.Date(2024, 3, 18, 23, 59, 59, 999_000_000, loc))
	next := names(time.Date(2024, 3, 18, 23, 59, 59, 999_000_000, loc).Add(time.Millisecond))

	assert.Equal(t, []string{"Tomatensoep"}, first)
	assert.Equal(t, first, last)
	assert.Equal(t, []string{"Linzensoep"}, next)
}

func TestQueryService_DailyMessage(t *testing.T) {
	now := time.Date(2024, 3, 18, 12, 0, 0, 0, amsterdam(t))
	repo := newFakeSoupRepository("HQ", "HSL")
	repo.add(tomatensoep(now))
	svc := newTestQueryService(repo, now, nil)

	reply, err := svc.DailyMessage(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Text, "🍜 Alle soepen voor 18-3-2024"))
	assert.Contains(t, reply.Text, "HSL: €2.75")
}
