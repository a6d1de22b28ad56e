package repository // repository for show persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-pos/internal/model"
)

// showColumns is the column list every show query selects, in the order
// scanShow expects.
const showColumns = `id, public_id, movie_id, screen_id, starts_at, ends_at, status, created_at, updated_at`

// ShowRepo encapsulates database operations for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo given a DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// scanShow reads one show row.  Raw status strings are converted to the
// typed status here; an unknown value in the column is a data error and
// is reported rather than passed through.
func scanShow(row interface{ Scan(...any) error }) (*model.Show, error) {
	var s model.Show
	var status string
	if err := row.Scan(&s.ID, &s.PublicID, &s.MovieID, &s.ScreenID, &s.StartsAt, &s.EndsAt, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = model.ShowStatus(status)
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("shows.status holds unknown value %q", status)
	}
	return &s, nil
}

// Create inserts a new show and populates its ID.  The status column is
// written from the typed value on the struct.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`INSERT INTO shows (public_id, movie_id, screen_id, starts_at, ends_at, status) VALUES (?, ?, ?, ?, ?, ?)`,
		s.PublicID, s.MovieID, s.ScreenID, s.StartsAt.UTC(), s.EndsAt.UTC(), string(s.Status),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// ByPublicID returns the show with the given public identifier or
// ErrShowNotFound.
func (r *ShowRepo) ByPublicID(ctx context.Context, publicID string) (*model.Show, error) {
	row := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE public_id = ?`, publicID)
	s, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowNotFound
	}
	return s, err
}

// FindOverlapping returns active shows on a screen whose time window
// overlaps [start, end).  Overlap uses the half-open test: an existing
// show clashes when it starts before the new window ends and ends after
// the new window starts.  Only SCHEDULED and RUNNING shows can clash;
// completed and cancelled shows no longer occupy the screen.
func (r *ShowRepo) FindOverlapping(ctx context.Context, screenID uint64, start, end time.Time) ([]model.Show, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+showColumns+` FROM shows
		 WHERE screen_id = ? AND status IN ('SCHEDULED', 'RUNNING')
		   AND starts_at < ? AND ends_at > ?`,
		screenID, end.UTC(), start.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return collectShows(rows)
}

// UpdateStatus transitions a show's status conditionally.  The UPDATE is
// keyed on the current status, so two racing writers cannot both apply a
// transition: the loser sees false and must re-read.
func (r *ShowRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ShowStatus) (bool, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE shows SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DueToStart returns SCHEDULED shows whose start time has passed.
func (r *ShowRepo) DueToStart(ctx context.Context, now time.Time) ([]model.Show, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE status = 'SCHEDULED' AND starts_at <= ?`, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectShows(rows)
}

// DueToComplete returns RUNNING shows whose end time has passed.
func (r *ShowRepo) DueToComplete(ctx context.Context, now time.Time) ([]model.Show, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE status = 'RUNNING' AND ends_at <= ?`, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectShows(rows)
}

// collectShows drains rows into a slice, closing them in all paths.
func collectShows(rows *sql.Rows) ([]model.Show, error) {
	defer rows.Close()
	var out []model.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
