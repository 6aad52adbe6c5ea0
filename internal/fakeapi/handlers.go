package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/foodwaste-zero/identity"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LoginHandler handles POST /users/login, a form-encoded password grant.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		if grant := r.PostForm.Get("grant_type"); grant != "" && grant != "password" {
			writeDetail(w, http.StatusBadRequest, "unsupported grant_type")
			return
		}

		u, ok := s.authenticate(r.PostForm.Get("username"), r.PostForm.Get("password"))
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}

		token, err := s.issueToken(u.profile.ID.String())
		if err != nil {
			log.Err(err).Msg("Failed to issue access token")
			writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// MeHandler handles GET /users/me.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := s.profile(userIDFromContext(r))
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// UpdateMeHandler handles PUT /users/me with a partial JSON body.
func (s *Server) UpdateMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update identity.ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid profile payload")
			return
		}
		if update.HouseholdSize != nil && *update.HouseholdSize < 1 {
			writeDetail(w, http.StatusUnprocessableEntity, "household_size must be at least 1")
			return
		}

		profile, err := s.updateProfile(userIDFromContext(r), update)
		if errors.Is(err, errUserExists) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		if err != nil {
			writeDetail(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// ProductsHandler handles GET /products/.
func (s *Server) ProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.productsFor(userIDFromContext(r)))
	}
}

// HistoryHandler handles GET /history.
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.historyFor(userIDFromContext(r)))
	}
}

func userIDFromContext(r *http.Request) string {
	userID, _ := r.Context().Value(ContextKeyUserID).(string)
	return userID
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
