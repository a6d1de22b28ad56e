package repository // read-only adapter over the external movie/screen catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-pos/internal/model"
)

// CatalogRepo reads the movie and screen catalog tables maintained by the
// external catalog system.  Scheduling is the only consumer and it only
// ever reads; catalog CRUD lives elsewhere.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo given a DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// MovieByPublicID returns the movie with the given public identifier or
// ErrMovieNotFound.
func (r *CatalogRepo) MovieByPublicID(ctx context.Context, publicID string) (*model.Movie, error) {
	var m model.Movie
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, public_id, title, duration_min, is_active, created_at, updated_at
		 FROM movies WHERE public_id = ?`, publicID).
		Scan(&m.ID, &m.PublicID, &m.Title, &m.DurationMin, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ScreenByPublicID returns the screen with the given public identifier or
// ErrScreenNotFound.
func (r *CatalogRepo) ScreenByPublicID(ctx context.Context, publicID string) (*model.Screen, error) {
	var s model.Screen
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, public_id, name, is_active, created_at, updated_at
		 FROM screens WHERE public_id = ?`, publicID).
		Scan(&s.ID, &s.PublicID, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScreenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ActiveSeats returns the active seats of a screen's template ordered by
// grid position.  Inactive seats never materialize into show seats.
func (r *CatalogRepo) ActiveSeats(ctx context.Context, screenID uint64) ([]model.ScreenSeat, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT id, screen_id, public_id, label, row_index, col_index, seat_type, meta_json, is_active
		 FROM screen_seats WHERE screen_id = ? AND is_active = 1 ORDER BY row_index, col_index`, screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScreenSeat
	for rows.Next() {
		var s model.ScreenSeat
		if err := rows.Scan(&s.ID, &s.ScreenID, &s.PublicID, &s.Label, &s.RowIndex, &s.ColIndex,
			&s.SeatType, &s.MetaJSON, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
