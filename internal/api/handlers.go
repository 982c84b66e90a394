package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/TechXTT/tidbreader/internal/record"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	msgRunning   = "TiDB Reader Service is running"
	msgInternal  = "Internal server error"
	msgInvalidID = "Invalid user ID"
)

// UserService is the lookup the API exposes.
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (record.Record, bool, error)
}

type detail struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msgRunning})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	user, ok, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		log.Error().Err(err).
			Str("request_id", GetRequestID(ctx)).
			Int64("user_id", id).
			Msg("error while fetching user")
		writeDetail(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("User with ID %d not found", id))
		return
	}

	body, err := json.Marshal(user)
	if err != nil {
		log.Error().Err(err).
			Str("request_id", GetRequestID(ctx)).
			Int64("user_id", id).
			Msg("failed to encode user")
		writeDetail(w, http.StatusInternalServerError, msgInternal)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// bindInt64 parses the named path variable before next runs. Anything
// that is not a base-10 int64 is answered with 422.
func bindInt64(name string, next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, msgInvalidID)
			return
		}
		next(w, r, v)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
