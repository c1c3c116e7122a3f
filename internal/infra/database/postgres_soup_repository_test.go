package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"soup_menu_bot/internal/domain/soup"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSoupRepositoryMock(t *testing.T) (*PostgresSoupRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresSoupRepository(db, time.Second), mock
}

func amsterdam(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return loc
}

var soupRowColumns = []string{"id", "name", "vegetarian", "soup_date", "created_at"}

func TestSoupsForDate_QueriesWholeDayAndAttachesOffers(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)
	loc := amsterdam(t)
	noon := time.Date(2024, 3, 18, 12, 30, 0, 0, loc)
	start, end := soup.DayBounds(noon)

	mock.ExpectQuery(regexp.QuoteMeta("FROM soups s")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows(soupRowColumns).
			AddRow(int64(1), "Tomatensoep", false, start, start).
			AddRow(int64(2), "Groentesoep", true, start, start))
	mock.ExpectQuery(regexp.QuoteMeta("FROM soup_locations sl")).
		WithArgs("{1,2}").
		WillReturnRows(sqlmock.NewRows([]string{"soup_id", "location_id", "name", "price_cents"}).
			AddRow(int64(1), int64(1), "HQ", int64(250)).
			AddRow(int64(1), int64(2), "HSL", int64(275)).
			AddRow(int64(2), int64(3), "LD", int64(250)))

	soups, err := repo.SoupsForDate(context.Background(), noon)
	require.NoError(t, err)
	require.Len(t, soups, 2)
	assert.Equal(t, "Tomatensoep", soups[0].Name)
	assert.Equal(t, []soup.Offer{
		{LocationID: 1, LocationName: "HQ", Price: 250},
		{LocationID: 2, LocationName: "HSL", Price: 275},
	}, soups[0].Offers)
	assert.True(t, soups[1].Vegetarian)
	assert.Equal(t, []soup.Offer{{LocationID: 3, LocationName: "LD", Price: 250}}, soups[1].Offers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoupsForDate_EmptyDaySkipsOfferQuery(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)
	day := time.Date(2024, 3, 19, 0, 0, 0, 0, amsterdam(t))
	start, end := soup.DayBounds(day)

	mock.ExpectQuery(regexp.QuoteMeta("FROM soups s")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows(soupRowColumns))

	soups, err := repo.SoupsForDate(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, soups)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoupsForDateAndLocation_BindsLocation(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)
	day := time.Date(2024, 3, 18, 8, 0, 0, 0, amsterdam(t))
	start, end := soup.DayBounds(day)

	mock.ExpectQuery(regexp.QuoteMeta("l.name = $3")).
		WithArgs(start, end, "HQ").
		WillReturnRows(sqlmock.NewRows(soupRowColumns).AddRow(int64(4), "Erwtensoep", false, start, start))
	mock.ExpectQuery(regexp.QuoteMeta("FROM soup_locations sl")).
		WithArgs("{4}").
		WillReturnRows(sqlmock.NewRows([]string{"soup_id", "location_id", "name", "price_cents"}).
			AddRow(int64(4), int64(1), "HQ", int64(310)))

	soups, err := repo.SoupsForDateAndLocation(context.Background(), "HQ", day)
	require.NoError(t, err)
	require.Len(t, soups, 1)
	assert.Equal(t, soup.Cents(310), soups[0].Offers[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSoup_WritesSoupAndOffersInOneTransaction(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)
	date := time.Date(2024, 3, 18, 0, 0, 0, 0, amsterdam(t))
	createdAt := date.Add(9 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations WHERE name = $1")).
		WithArgs("HQ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations WHERE name = $1")).
		WithArgs("LD").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO soups")).
		WithArgs("Groentesoep", true, date).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), createdAt))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO soup_locations")).
		WithArgs(int64(9), int64(1), int64(250)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO soup_locations")).
		WithArgs(int64(9), int64(3), int64(275)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.CreateSoup(context.Background(), soup.NewSoup{
		Name:       "Groentesoep",
		Vegetarian: true,
		Date:       date,
		Prices:     []soup.LocationPrice{{LocationName: "HQ", Price: 250}, {LocationName: "LD", Price: 275}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, createdAt, created.CreatedAt)
	assert.Len(t, created.Offers, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSoup_UnknownLocationRollsBackWithoutWriting(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations WHERE name = $1")).
		WithArgs("HQ").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations WHERE name = $1")).
		WithArgs("XX").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.CreateSoup(context.Background(), soup.NewSoup{
		Name:   "Soep",
		Date:   time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		Prices: []soup.LocationPrice{{LocationName: "HQ", Price: 250}, {LocationName: "XX", Price: 250}},
	})
	assert.ErrorIs(t, err, soup.ErrLocationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSoup_RemovesOffersBeforeSoup(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM soup_locations WHERE soup_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM soups WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteSoup(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSoup_NotFound(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM soup_locations")).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM soups")).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.DeleteSoup(context.Background(), 8), soup.ErrSoupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSoupPrice(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := newSoupRepositoryMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations")).
			WithArgs("HSL").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE soup_locations SET price_cents = $1")).
			WithArgs(int64(300), int64(5), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateSoupPrice(context.Background(), 5, "HSL", 300))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("soup not offered there", func(t *testing.T) {
		repo, mock := newSoupRepositoryMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations")).
			WithArgs("LD").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE soup_locations")).
			WithArgs(int64(300), int64(5), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateSoupPrice(context.Background(), 5, "LD", 300), soup.ErrOfferNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown location", func(t *testing.T) {
		repo, mock := newSoupRepositoryMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM locations")).
			WithArgs("XX").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		assert.ErrorIs(t, repo.UpdateSoupPrice(context.Background(), 5, "XX", 300), soup.ErrLocationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLocations(t *testing.T) {
	repo, mock := newSoupRepositoryMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM locations ORDER BY name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "HQ").AddRow(int64(3), "LD"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations (name) VALUES ($1)")).
		WithArgs("HSL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(2), "HSL"))

	locations, err := repo.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*soup.Location{{ID: 1, Name: "HQ"}, {ID: 3, Name: "LD"}}, locations)

	created, err := repo.CreateLocation(context.Background(), "HSL")
	require.NoError(t, err)
	assert.Equal(t, &soup.Location{ID: 2, Name: "HSL"}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
