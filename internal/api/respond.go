package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restogrades/internal/logging"
	"restogrades/internal/model"
	"restogrades/internal/util"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not Found")
}

// fail maps err to a response: validation errors are 400, missing rows 404 and
// anything else a 500 carrying the underlying message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log.With(
		logging.String("request-id", requestIDFrom(r.Context())),
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
	)

	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Debug("request rejected", logging.String("reason", verr.Message))
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, model.ErrNotFound):
		s.notFound(w, r)
	default:
		log.Error("storage fault", logging.Error(err))
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID returns the {id} route variable. The route pattern only admits
// digits, so a parse failure means the id overflows and cannot exist.
func pathID(r *http.Request) (string, int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw, 0, false
	}
	return raw, id, true
}

// body is a decoded JSON object whose values are parsed on demand, so that
// absent keys stay distinguishable from null or empty ones.
type body map[string]json.RawMessage

func decodeBody(r *http.Request) (body, error) {
	var b body
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b == nil {
		return nil, model.NewValidationError("Request body must be a JSON object")
	}
	return b, nil
}

func (b body) has(field string) bool {
	_, ok := b[field]
	return ok
}

func (b body) isNull(field string) bool {
	raw, ok := b[field]
	return ok && strings.TrimSpace(string(raw)) == "null"
}

// requiredString returns a present, non-empty string value.
func (b body) requiredString(field string) (string, error) {
	var v string
	raw, ok := b[field]
	if !ok || json.Unmarshal(raw, &v) != nil || v == "" {
		return "", model.NewValidationError("Must specify value for %s", field)
	}
	return v, nil
}

// optionalString returns nil for an absent or null value.
func (b body) optionalString(field string) (*string, error) {
	if !b.has(field) || b.isNull(field) {
		return nil, nil
	}
	var v string
	if err := json.Unmarshal(b[field], &v); err != nil {
		return nil, model.NewValidationError("%s must be a string", field)
	}
	return &v, nil
}

// optionalInt returns nil for an absent or null value. Values must fit the
// 32-bit INTEGER column.
func (b body) optionalInt(field string) (*int64, error) {
	if !b.has(field) || b.isNull(field) {
		return nil, nil
	}
	var v int64
	if err := json.Unmarshal(b[field], &v); err != nil {
		return nil, model.NewValidationError("%s must be an integer", field)
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, model.NewValidationError("%s is out of range", field)
	}
	return &v, nil
}

// requiredID accepts a positive id given either as a JSON number or a string.
func (b body) requiredID(field string) (int64, error) {
	raw, ok := b.idString(field)
	if !ok {
		return 0, model.NewValidationError("Must specify value for %s", field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("%s must be a valid id", field)
	}
	return id, nil
}

// idString renders an id value the way it would appear in a URL path.
func (b body) idString(field string) (string, bool) {
	raw, ok := b[field]
	if !ok || b.isNull(field) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// inspectionDate parses a present date value.
func (b body) inspectionDate(field string) (time.Time, error) {
	var s string
	if err := json.Unmarshal(b[field], &s); err != nil {
		return time.Time{}, model.NewValidationError("%s must be a date", field)
	}
	t, err := util.ParseInspectionDate(s)
	if err != nil {
		return time.Time{}, model.NewValidationError("%s must be a date", field)
	}
	return t, nil
}

// matchIDs requires the body id to equal the path id, compared as strings.
func matchIDs(pathID string, b body) error {
	bodyID, ok := b.idString("id")
	if !ok || bodyID != pathID {
		shown := bodyID
		if !ok {
			shown = "missing"
		}
		return model.NewValidationError("Request path id (%s) and request body id (%s) must match", pathID, shown)
	}
	return nil
}
