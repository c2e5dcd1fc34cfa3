package model

import (
	"strings"
	"time"
)

// Borough is one of the five New York City boroughs.
type Borough string

const (
	Manhattan    Borough = "Manhattan"
	Brooklyn     Borough = "Brooklyn"
	Bronx        Borough = "Bronx"
	Queens       Borough = "Queens"
	StatenIsland Borough = "Staten Island"
)

// Boroughs lists every accepted borough.
var Boroughs = []Borough{Manhattan, Brooklyn, Bronx, Queens, StatenIsland}

// ParseBorough returns the borough named by s.
func ParseBorough(s string) (Borough, error) {
	for _, b := range Boroughs {
		if string(b) == s {
			return b, nil
		}
	}
	names := make([]string, len(Boroughs))
	for i, b := range Boroughs {
		names[i] = string(b)
	}
	return "", NewValidationError("borough must be one of %s", strings.Join(names, ", "))
}

// Restaurant represents a restaurant entity.
type Restaurant struct {
	ID                    int64
	Name                  string
	Borough               Borough
	Cuisine               string
	AddressBuildingNumber *string
	AddressStreet         *string
	AddressZipcode        *string
	Grades                []Grade
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Grade represents a health inspection grade awarded to a restaurant.
type Grade struct {
	ID             int64
	Grade          string
	Score          *int64
	InspectionDate time.Time
	RestaurantID   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewRestaurant represents data for creating a restaurant, optionally together
// with its first grades.
type NewRestaurant struct {
	Name                  string
	Borough               Borough
	Cuisine               string
	AddressBuildingNumber *string
	AddressStreet         *string
	AddressZipcode        *string
	Grades                []NewGrade
}

// NewGrade represents data for creating a grade.
type NewGrade struct {
	RestaurantID   int64
	Grade          string
	Score          *int64
	InspectionDate time.Time
}

// Optional holds a value that may be absent from a partial update.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UpdateRestaurant represents a partial update of a restaurant. Only fields
// that are Set are written.
type UpdateRestaurant struct {
	ID                    int64
	Name                  Optional[string]
	Borough               Optional[Borough]
	Cuisine               Optional[string]
	AddressBuildingNumber Optional[*string]
	AddressStreet         Optional[*string]
	AddressZipcode        Optional[*string]
}

// Empty reports whether the update changes nothing.
func (u UpdateRestaurant) Empty() bool {
	return !u.Name.Set && !u.Borough.Set && !u.Cuisine.Set &&
		!u.AddressBuildingNumber.Set && !u.AddressStreet.Set && !u.AddressZipcode.Set
}

// UpdateGrade represents a partial update of a grade.
type UpdateGrade struct {
	ID             int64
	Grade          Optional[string]
	Score          Optional[*int64]
	InspectionDate Optional[time.Time]
	RestaurantID   Optional[int64]
}

// Empty reports whether the update changes nothing.
func (u UpdateGrade) Empty() bool {
	return !u.Grade.Set && !u.Score.Set && !u.InspectionDate.Set && !u.RestaurantID.Set
}
