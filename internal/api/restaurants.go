package api

import (
	"net/http"

	"restogrades/internal/model"
)

type restaurantsResponse struct {
	Restaurants []model.RestaurantRepr `json:"restaurants"`
}

type gradesResponse struct {
	Grades []model.GradeRepr `json:"grades"`
}

var addressFields = []string{"addressBuildingNumber", "addressStreet", "addressZipcode"}

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := s.store.FindAllRestaurants(r.Context(), s.cfg.ListLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := restaurantsResponse{Restaurants: make([]model.RestaurantRepr, 0, len(restaurants))}
	for _, restaurant := range restaurants {
		resp.Restaurants = append(resp.Restaurants, restaurant.APIRepr())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	_, id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	restaurant, err := s.store.FindRestaurant(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant.APIRepr())
}

func (s *Server) restaurantGrades(w http.ResponseWriter, r *http.Request) {
	_, id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	restaurant, err := s.store.FindRestaurant(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := gradesResponse{Grades: make([]model.GradeRepr, 0, len(restaurant.Grades))}
	for _, g := range restaurant.Grades {
		resp.Grades = append(resp.Grades, g.APIRepr())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createRestaurant(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	nr, err := newRestaurantFromBody(b)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	restaurant, err := s.store.CreateRestaurant(r.Context(), nr)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant.APIRepr())
}

func (s *Server) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	rawID, id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	b, err := decodeBody(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchIDs(rawID, b); err != nil {
		s.fail(w, r, err)
		return
	}

	u, err := restaurantUpdateFromBody(id, b)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.store.UpdateRestaurant(r.Context(), u); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	_, id, ok := pathID(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := s.store.DeleteRestaurant(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func newRestaurantFromBody(b body) (model.NewRestaurant, error) {
	var nr model.NewRestaurant
	var err error

	if nr.Name, err = b.requiredString("name"); err != nil {
		return nr, err
	}
	borough, err := b.requiredString("borough")
	if err != nil {
		return nr, err
	}
	if nr.Cuisine, err = b.requiredString("cuisine"); err != nil {
		return nr, err
	}
	if nr.Borough, err = model.ParseBorough(borough); err != nil {
		return nr, err
	}

	address := []**string{&nr.AddressBuildingNumber, &nr.AddressStreet, &nr.AddressZipcode}
	for i, field := range addressFields {
		if *address[i], err = b.optionalString(field); err != nil {
			return nr, err
		}
	}

	return nr, nil
}

func restaurantUpdateFromBody(id int64, b body) (model.UpdateRestaurant, error) {
	u := model.UpdateRestaurant{ID: id}

	if b.has("name") {
		name, err := b.requiredString("name")
		if err != nil {
			return u, err
		}
		u.Name = model.Some(name)
	}
	if b.has("borough") {
		raw, err := b.requiredString("borough")
		if err != nil {
			return u, err
		}
		borough, err := model.ParseBorough(raw)
		if err != nil {
			return u, err
		}
		u.Borough = model.Some(borough)
	}
	if b.has("cuisine") {
		cuisine, err := b.requiredString("cuisine")
		if err != nil {
			return u, err
		}
		u.Cuisine = model.Some(cuisine)
	}

	address := []*model.Optional[*string]{&u.AddressBuildingNumber, &u.AddressStreet, &u.AddressZipcode}
	for i, field := range addressFields {
		if !b.has(field) {
			continue
		}
		v, err := b.optionalString(field)
		if err != nil {
			return u, err
		}
		*address[i] = model.Some(v)
	}

	return u, nil
}
