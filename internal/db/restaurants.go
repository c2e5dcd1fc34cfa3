package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restogrades/internal/logging"
	"restogrades/internal/model"

	"github.com/georgysavva/scany/sqlscan"
	"github.com/pkg/errors"
)

const restaurantColumns = `id, name, borough, cuisine, address_building_number, address_street, address_zipcode, created_at, updated_at`

type restaurantRow struct {
	ID                    int64   `db:"id"`
	Name                  string  `db:"name"`
	Borough               string  `db:"borough"`
	Cuisine               string  `db:"cuisine"`
	AddressBuildingNumber *string `db:"address_building_number"`
	AddressStreet         *string `db:"address_street"`
	AddressZipcode        *string `db:"address_zipcode"`
	CreatedAt             string  `db:"created_at"`
	UpdatedAt             string  `db:"updated_at"`
}

func (r restaurantRow) toModel() (model.Restaurant, error) {
	restaurant := model.Restaurant{
		ID:                    r.ID,
		Name:                  r.Name,
		Borough:               model.Borough(r.Borough),
		Cuisine:               r.Cuisine,
		AddressBuildingNumber: r.AddressBuildingNumber,
		AddressStreet:         r.AddressStreet,
		AddressZipcode:        r.AddressZipcode,
	}
	var err error
	if restaurant.CreatedAt, err = parseTimestamp("created_at", r.CreatedAt); err != nil {
		return restaurant, errors.Wrapf(err, "restaurant %d", r.ID)
	}
	if restaurant.UpdatedAt, err = parseTimestamp("updated_at", r.UpdatedAt); err != nil {
		return restaurant, errors.Wrapf(err, "restaurant %d", r.ID)
	}
	return restaurant, nil
}

// FindAllRestaurants retrieves up to limit restaurants ordered by id, each with
// its grades loaded.
func (s *Store) FindAllRestaurants(ctx context.Context, limit int) ([]model.Restaurant, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT %s FROM restaurants ORDER BY id LIMIT %s`, restaurantColumns, s.bindVar(&args, limit))

	var rows []restaurantRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list restaurants")
	}

	restaurants := make([]model.Restaurant, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		restaurant, err := row.toModel()
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
		ids = append(ids, row.ID)
	}

	grades, err := s.gradesByRestaurant(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		restaurants[i].Grades = grades[restaurants[i].ID]
	}

	return restaurants, nil
}

// FindRestaurant retrieves a single restaurant by ID with its grades. It
// returns model.ErrNotFound when no row matches.
func (s *Store) FindRestaurant(ctx context.Context, id int64) (model.Restaurant, error) {
	return s.findRestaurant(ctx, s.db, id)
}

func (s *Store) findRestaurant(ctx context.Context, q queryer, id int64) (model.Restaurant, error) {
	args := []interface{}{}
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = %s`, restaurantColumns, s.bindVar(&args, id))

	var row restaurantRow
	if err := sqlscan.Get(ctx, q, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return model.Restaurant{}, errors.Wrapf(model.ErrNotFound, "restaurant %d", id)
		}
		return model.Restaurant{}, errors.Wrap(err, "failed to get restaurant")
	}

	restaurant, err := row.toModel()
	if err != nil {
		return model.Restaurant{}, err
	}
	grades, err := s.gradesByRestaurant(ctx, q, []int64{id})
	if err != nil {
		return model.Restaurant{}, err
	}
	restaurant.Grades = grades[id]

	return restaurant, nil
}

// CreateRestaurant inserts a restaurant and any nested grades in one
// transaction and returns the stored restaurant.
func (s *Store) CreateRestaurant(ctx context.Context, r model.NewRestaurant) (model.Restaurant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Restaurant{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	args := []interface{}{}
	query := fmt.Sprintf(`
		INSERT INTO restaurants (name, borough, cuisine, address_building_number, address_street, address_zipcode)
		VALUES (%s, %s, %s, %s, %s, %s)
		RETURNING id
	`,
		s.bindVar(&args, r.Name),
		s.bindVar(&args, string(r.Borough)),
		s.bindVar(&args, r.Cuisine),
		s.bindVar(&args, nullable(r.AddressBuildingNumber)),
		s.bindVar(&args, nullable(r.AddressStreet)),
		s.bindVar(&args, nullable(r.AddressZipcode)),
	)

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return model.Restaurant{}, errors.Wrap(err, "failed to insert restaurant")
	}

	for _, g := range r.Grades {
		g.RestaurantID = id
		if _, err := s.insertGrade(ctx, tx, g); err != nil {
			return model.Restaurant{}, err
		}
	}

	restaurant, err := s.findRestaurant(ctx, tx, id)
	if err != nil {
		return model.Restaurant{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Restaurant{}, errors.Wrap(err, "failed to commit transaction")
	}

	s.log.Debug("restaurant created", logging.Int64("id", id), logging.Int("grades", len(r.Grades)))
	return restaurant, nil
}

// UpdateRestaurant writes the fields set on u. Matching no row is not an error.
func (s *Store) UpdateRestaurant(ctx context.Context, u model.UpdateRestaurant) error {
	if u.Empty() {
		return nil
	}

	args := []interface{}{}
	var sets []string
	if u.Name.Set {
		sets = append(sets, "name = "+s.bindVar(&args, u.Name.Value))
	}
	if u.Borough.Set {
		sets = append(sets, "borough = "+s.bindVar(&args, string(u.Borough.Value)))
	}
	if u.Cuisine.Set {
		sets = append(sets, "cuisine = "+s.bindVar(&args, u.Cuisine.Value))
	}
	if u.AddressBuildingNumber.Set {
		sets = append(sets, "address_building_number = "+s.bindVar(&args, nullable(u.AddressBuildingNumber.Value)))
	}
	if u.AddressStreet.Set {
		sets = append(sets, "address_street = "+s.bindVar(&args, nullable(u.AddressStreet.Value)))
	}
	if u.AddressZipcode.Set {
		sets = append(sets, "address_zipcode = "+s.bindVar(&args, nullable(u.AddressZipcode.Value)))
	}
	sets = append(sets, "updated_at = "+s.bindVar(&args, s.timeArg(time.Now())))

	query := fmt.Sprintf(`UPDATE restaurants SET %s WHERE id = %s`, strings.Join(sets, ", "), s.bindVar(&args, u.ID))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to update restaurant")
	}

	return nil
}

// DeleteRestaurant deletes a restaurant and all its grades.
func (s *Store) DeleteRestaurant(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	args := []interface{}{}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM grades WHERE restaurant_id = %s", s.bindVar(&args, id)), args...); err != nil {
		return errors.Wrap(err, "failed to delete grades")
	}

	args = args[:0]
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM restaurants WHERE id = %s", s.bindVar(&args, id)), args...); err != nil {
		return errors.Wrap(err, "failed to delete restaurant")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

func (s *Store) restaurantExists(ctx context.Context, q queryer, id int64) (bool, error) {
	args := []interface{}{}
	var n int
	query := fmt.Sprintf(`SELECT COUNT(1) FROM restaurants WHERE id = %s`, s.bindVar(&args, id))
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, errors.Wrap(err, "failed to look up restaurant")
	}
	return n > 0, nil
}
