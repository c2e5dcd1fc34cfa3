package model

import "time"

// AddressRepr is the address block of a restaurant's API representation.
type AddressRepr struct {
	Number *string `json:"number"`
	Street *string `json:"street"`
	Zip    *string `json:"zip"`
}

// RestaurantRepr is the JSON shape of a restaurant.
type RestaurantRepr struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Cuisine         string      `json:"cuisine"`
	Borough         Borough     `json:"borough"`
	Address         AddressRepr `json:"address"`
	MostRecentGrade *GradeRepr  `json:"mostRecentGrade"`
}

// GradeRepr is the JSON shape of a grade.
type GradeRepr struct {
	ID             int64     `json:"id"`
	Grade          string    `json:"grade"`
	Score          *int64    `json:"score"`
	InspectionDate time.Time `json:"inspectionDate"`
	RestaurantID   int64     `json:"restaurantId"`
}

// APIRepr projects the restaurant and whatever grades are loaded on it.
func (r Restaurant) APIRepr() RestaurantRepr {
	repr := RestaurantRepr{
		ID:      r.ID,
		Name:    r.Name,
		Cuisine: r.Cuisine,
		Borough: r.Borough,
		Address: AddressRepr{
			Number: r.AddressBuildingNumber,
			Street: r.AddressStreet,
			Zip:    r.AddressZipcode,
		},
	}
	if g := MostRecentGrade(r.Grades); g != nil {
		gr := g.APIRepr()
		repr.MostRecentGrade = &gr
	}
	return repr
}

// APIRepr projects the grade.
func (g Grade) APIRepr() GradeRepr {
	return GradeRepr{
		ID:             g.ID,
		Grade:          g.Grade,
		Score:          g.Score,
		InspectionDate: g.InspectionDate.UTC(),
		RestaurantID:   g.RestaurantID,
	}
}
