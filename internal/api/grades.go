package api

import (
	"net/http"
	"time"

	"restogrades/internal/model"
)

func (s *Server) getGrade(w http.ResponseWriter, r *http.Request) {
	_, id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	grade, err := s.store.FindGrade(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grade.APIRepr())
}

func (s *Server) createGrade(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ng, err := newGradeFromBody(b, time.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	grade, err := s.store.CreateGrade(r.Context(), ng)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, grade.APIRepr())
}

func (s *Server) updateGrade(w http.ResponseWriter, r *http.Request) {
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

	u, err := gradeUpdateFromBody(id, b)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.store.UpdateGrade(r.Context(), u); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteGrade(w http.ResponseWriter, r *http.Request) {
	_, id, ok := pathID(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := s.store.DeleteGrade(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// newGradeFromBody reads a grade to create. The inspection date defaults to
// now because the column is required but the field is optional for clients.
func newGradeFromBody(b body, now time.Time) (model.NewGrade, error) {
	var ng model.NewGrade
	var err error

	if ng.Grade, err = b.requiredString("grade"); err != nil {
		return ng, err
	}
	if ng.RestaurantID, err = b.requiredID("restaurantId"); err != nil {
		return ng, err
	}
	if ng.Score, err = b.optionalInt("score"); err != nil {
		return ng, err
	}

	ng.InspectionDate = now.UTC()
	if b.has("inspectionDate") && !b.isNull("inspectionDate") {
		if ng.InspectionDate, err = b.inspectionDate("inspectionDate"); err != nil {
			return ng, err
		}
	}

	return ng, nil
}

func gradeUpdateFromBody(id int64, b body) (model.UpdateGrade, error) {
	u := model.UpdateGrade{ID: id}

	if b.has("grade") {
		grade, err := b.requiredString("grade")
		if err != nil {
			return u, err
		}
		u.Grade = model.Some(grade)
	}
	if b.has("score") {
		score, err := b.optionalInt("score")
		if err != nil {
			return u, err
		}
		u.Score = model.Some(score)
	}
	if b.has("inspectionDate") {
		date, err := b.inspectionDate("inspectionDate")
		if err != nil {
			return u, err
		}
		u.InspectionDate = model.Some(date)
	}
	if b.has("restaurantId") {
		restaurantID, err := b.requiredID("restaurantId")
		if err != nil {
			return u, err
		}
		u.RestaurantID = model.Some(restaurantID)
	}

	return u, nil
}
