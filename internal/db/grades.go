package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restogrades/internal/model"

	"github.com/georgysavva/scany/sqlscan"
	"github.com/pkg/errors"
)

const gradeColumns = `id, grade, score, inspection_date, restaurant_id, created_at, updated_at`

type gradeRow struct {
	ID             int64  `db:"id"`
	Grade          string `db:"grade"`
	Score          *int64 `db:"score"`
	InspectionDate string `db:"inspection_date"`
	RestaurantID   int64  `db:"restaurant_id"`
	CreatedAt      string `db:"created_at"`
	UpdatedAt      string `db:"updated_at"`
}

func (r gradeRow) toModel() (model.Grade, error) {
	g := model.Grade{
		ID:           r.ID,
		Grade:        r.Grade,
		Score:        r.Score,
		RestaurantID: r.RestaurantID,
	}
	var err error
	if g.InspectionDate, err = parseTimestamp("inspection_date", r.InspectionDate); err != nil {
		return g, errors.Wrapf(err, "grade %d", r.ID)
	}
	if g.CreatedAt, err = parseTimestamp("created_at", r.CreatedAt); err != nil {
		return g, errors.Wrapf(err, "grade %d", r.ID)
	}
	if g.UpdatedAt, err = parseTimestamp("updated_at", r.UpdatedAt); err != nil {
		return g, errors.Wrapf(err, "grade %d", r.ID)
	}
	return g, nil
}

// FindGrade retrieves a single grade by ID. It returns model.ErrNotFound when
// no row matches.
func (s *Store) FindGrade(ctx context.Context, id int64) (model.Grade, error) {
	return s.findGrade(ctx, s.db, id)
}

func (s *Store) findGrade(ctx context.Context, q queryer, id int64) (model.Grade, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT %s FROM grades WHERE id = %s`, gradeColumns, s.bindVar(&args, id))

	var row gradeRow
	if err := sqlscan.Get(ctx, q, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return model.Grade{}, errors.Wrapf(model.ErrNotFound, "grade %d", id)
		}
		return model.Grade{}, errors.Wrap(err, "failed to get grade")
	}

	return row.toModel()
}

// GradesForRestaurant returns a restaurant's grades ordered by id.
func (s *Store) GradesForRestaurant(ctx context.Context, restaurantID int64) ([]model.Grade, error) {
	grades, err := s.gradesByRestaurant(ctx, s.db, []int64{restaurantID})
	if err != nil {
		return nil, err
	}
	return grades[restaurantID], nil
}

// gradesByRestaurant loads the grades of every listed restaurant in a single
// query, grouped by restaurant id.
func (s *Store) gradesByRestaurant(ctx context.Context, q queryer, restaurantIDs []int64) (map[int64][]model.Grade, error) {
	result := make(map[int64][]model.Grade, len(restaurantIDs))
	if len(restaurantIDs) == 0 {
		return result, nil
	}

	args := []interface{}{}
	placeholders := make([]string, 0, len(restaurantIDs))
	for _, id := range restaurantIDs {
		placeholders = append(placeholders, s.bindVar(&args, id))
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM grades
		WHERE restaurant_id IN (%s)
		ORDER BY id
	`, gradeColumns, strings.Join(placeholders, ", "))

	var rows []gradeRow
	if err := sqlscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to query grades by restaurant")
	}

	for _, row := range rows {
		g, err := row.toModel()
		if err != nil {
			return nil, err
		}
		result[row.RestaurantID] = append(result[row.RestaurantID], g)
	}
	return result, nil
}

// CreateGrade inserts a grade for an existing restaurant. A missing or unknown
// restaurant is a validation error and nothing is written.
func (s *Store) CreateGrade(ctx context.Context, g model.NewGrade) (model.Grade, error) {
	if g.RestaurantID <= 0 {
		return model.Grade{}, model.NewValidationError("Must specify value for restaurantId")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Grade{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	exists, err := s.restaurantExists(ctx, tx, g.RestaurantID)
	if err != nil {
		return model.Grade{}, err
	}
	if !exists {
		return model.Grade{}, model.NewValidationError("Restaurant %d does not exist", g.RestaurantID)
	}

	id, err := s.insertGrade(ctx, tx, g)
	if err != nil {
		return model.Grade{}, err
	}

	grade, err := s.findGrade(ctx, tx, id)
	if err != nil {
		return model.Grade{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Grade{}, errors.Wrap(err, "failed to commit transaction")
	}

	return grade, nil
}

func (s *Store) insertGrade(ctx context.Context, q queryer, g model.NewGrade) (int64, error) {
	if g.Grade == "" {
		return 0, model.NewValidationError("Must specify value for grade")
	}
	if g.InspectionDate.IsZero() {
		return 0, model.NewValidationError("Must specify value for inspectionDate")
	}

	args := []interface{}{}
	query := fmt.Sprintf(`
		INSERT INTO grades (grade, score, inspection_date, restaurant_id)
		VALUES (%s, %s, %s, %s)
		RETURNING id
	`,
		s.bindVar(&args, g.Grade),
		s.bindVar(&args, nullable(g.Score)),
		s.bindVar(&args, s.timeArg(g.InspectionDate)),
		s.bindVar(&args, g.RestaurantID),
	)

	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "failed to insert grade")
	}

	return id, nil
}

// UpdateGrade writes the fields set on u. Matching no row is not an error, but
// moving the grade to an unknown restaurant is.
func (s *Store) UpdateGrade(ctx context.Context, u model.UpdateGrade) error {
	if u.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	args := []interface{}{}
	var sets []string
	if u.Grade.Set {
		sets = append(sets, "grade = "+s.bindVar(&args, u.Grade.Value))
	}
	if u.Score.Set {
		sets = append(sets, "score = "+s.bindVar(&args, nullable(u.Score.Value)))
	}
	if u.InspectionDate.Set {
		sets = append(sets, "inspection_date = "+s.bindVar(&args, s.timeArg(u.InspectionDate.Value)))
	}
	if u.RestaurantID.Set {
		exists, err := s.restaurantExists(ctx, tx, u.RestaurantID.Value)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewValidationError("Restaurant %d does not exist", u.RestaurantID.Value)
		}
		sets = append(sets, "restaurant_id = "+s.bindVar(&args, u.RestaurantID.Value))
	}
	sets = append(sets, "updated_at = "+s.bindVar(&args, s.timeArg(time.Now())))

	query := fmt.Sprintf(`UPDATE grades SET %s WHERE id = %s`, strings.Join(sets, ", "), s.bindVar(&args, u.ID))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to update grade")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// DeleteGrade deletes a grade.
func (s *Store) DeleteGrade(ctx context.Context, id int64) error {
	args := []interface{}{}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM grades WHERE id = %s", s.bindVar(&args, id)), args...); err != nil {
		return errors.Wrap(err, "failed to delete grade")
	}
	return nil
}
