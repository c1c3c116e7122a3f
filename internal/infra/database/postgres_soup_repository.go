package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"soup_menu_bot/internal/domain/soup"

	"github.com/lib/pq" // For pq.Array
)

type PostgresSoupRepository struct {
	db        *sql.DB
	dbTimeout time.Duration
}

func NewPostgresSoupRepository(db *sql.DB, dbTimeout time.Duration) *PostgresSoupRepository {
	return &PostgresSoupRepository{db: db, dbTimeout: dbTimeout}
}

const soupColumns = `s.id, s.name, s.vegetarian, s.soup_date, s.created_at`

func (r *PostgresSoupRepository) SoupsForDate(ctx context.Context, date time.Time) ([]*soup.Soup, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	start, end := soup.DayBounds(date)
	query := `SELECT ` + soupColumns + `
               FROM soups s
               WHERE s.soup_date >= $1 AND s.soup_date <= $2
               ORDER BY s.id`

	soups, err := r.querySoups(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("error listing soups for date: %w", err)
	}
	return soups, nil
}

func (r *PostgresSoupRepository) SoupsForDateAndLocation(ctx context.Context, locationName string, date time.Time) ([]*soup.Soup, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	start, end := soup.DayBounds(date)
	query := `SELECT ` + soupColumns + `
               FROM soups s
               WHERE s.soup_date >= $1 AND s.soup_date <= $2
                 AND EXISTS (
                     SELECT 1 FROM soup_locations sl
                     JOIN locations l ON l.id = sl.location_id
                     WHERE sl.soup_id = s.id AND l.name = $3)
               ORDER BY s.id`

	soups, err := r.querySoups(ctx, query, start, end, locationName)
	if err != nil {
		return nil, fmt.Errorf("error listing soups for date and location: %w", err)
	}
	return soups, nil
}

func (r *PostgresSoupRepository) ListSoups(ctx context.Context) ([]*soup.Soup, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	query := `SELECT ` + soupColumns + ` FROM soups s ORDER BY s.soup_date DESC, s.id DESC`
	soups, err := r.querySoups(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing all soups: %w", err)
	}
	return soups, nil
}

// querySoups runs a soup query and attaches every offer of the returned soups.
func (r *PostgresSoupRepository) querySoups(ctx context.Context, query string, args ...any) ([]*soup.Soup, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	soups := make([]*soup.Soup, 0)
	byID := make(map[int64]*soup.Soup)
	ids := make([]int64, 0)
	for rows.Next() {
		s := &soup.Soup{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Vegetarian, &s.Date, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning soup: %w", err)
		}
		soups = append(soups, s)
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating soups: %w", err)
	}
	if len(ids) == 0 {
		return soups, nil
	}

	offerQuery := `SELECT sl.soup_id, sl.location_id, l.name, sl.price_cents
               FROM soup_locations sl
               JOIN locations l ON l.id = sl.location_id
               WHERE sl.soup_id = ANY($1)
               ORDER BY l.name`
	offerRows, err := r.db.QueryContext(ctx, offerQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error listing soup offers: %w", err)
	}
	defer offerRows.Close()

	for offerRows.Next() {
		var soupID int64
		var o soup.Offer
		if err := offerRows.Scan(&soupID, &o.LocationID, &o.LocationName, &o.Price); err != nil {
			return nil, fmt.Errorf("error scanning soup offer: %w", err)
		}
		if s, ok := byID[soupID]; ok {
			s.Offers = append(s.Offers, o)
		}
	}
	if err = offerRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating soup offers: %w", err)
	}
	return soups, nil
}

func (r *PostgresSoupRepository) CreateSoup(ctx context.Context, draft soup.NewSoup) (*soup.Soup, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Resolve every location before writing so an unknown name leaves no trace.
	offers := make([]soup.Offer, 0, len(draft.Prices))
	for _, lp := range draft.Prices {
		id, err := lookupLocationID(ctx, tx, lp.LocationName)
		if err != nil {
			return nil, err
		}
		offers = append(offers, soup.Offer{LocationID: id, LocationName: lp.LocationName, Price: lp.Price})
	}

	created := &soup.Soup{
		Name:       draft.Name,
		Vegetarian: draft.Vegetarian,
		Date:       draft.Date,
		Offers:     offers,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO soups (name, vegetarian, soup_date) VALUES ($1, $2, $3) RETURNING id, created_at`,
		draft.Name, draft.Vegetarian, draft.Date,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating soup: %w", err)
	}

	for _, o := range offers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO soup_locations (soup_id, location_id, price_cents) VALUES ($1, $2, $3)`,
			created.ID, o.LocationID, o.Price)
		if err != nil {
			return nil, fmt.Errorf("error creating soup offer at %s: %w", o.LocationName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing soup: %w", err)
	}
	return created, nil
}

func (r *PostgresSoupRepository) DeleteSoup(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM soup_locations WHERE soup_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting soup offers: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM soups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting soup: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("error reading deleted soup count: %w", err)
	} else if n == 0 {
		return soup.ErrSoupNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing soup deletion: %w", err)
	}
	return nil
}

func (r *PostgresSoupRepository) UpdateSoupPrice(ctx context.Context, soupID int64, locationName string, price soup.Cents) error {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	locationID, err := lookupLocationID(ctx, r.db, locationName)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE soup_locations SET price_cents = $1 WHERE soup_id = $2 AND location_id = $3`,
		price, soupID, locationID)
	if err != nil {
		return fmt.Errorf("error updating soup price: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("error reading updated price count: %w", err)
	} else if n == 0 {
		return soup.ErrOfferNotFound
	}
	return nil
}

func (r *PostgresSoupRepository) ListLocations(ctx context.Context) ([]*soup.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing locations: %w", err)
	}
	defer rows.Close()

	locations := make([]*soup.Location, 0)
	for rows.Next() {
		l := &soup.Location{}
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return locations, nil
}

func (r *PostgresSoupRepository) CreateLocation(ctx context.Context, name string) (*soup.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `INSERT INTO locations (name) VALUES ($1)
               ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
               RETURNING id, name`
	l := &soup.Location{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&l.ID, &l.Name); err != nil {
		return nil, fmt.Errorf("error creating location: %w", err)
	}
	return l, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func lookupLocationID(ctx context.Context, q queryRower, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM locations WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", soup.ErrLocationNotFound, name)
		}
		return 0, fmt.Errorf("error looking up location %s: %w", name, err)
	}
	return id, nil
}
