package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/CaioWF/ignite-finapi/internal/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// authenticate extracts the bearer token, verifies it and stores the caller's
// user id in the request context. It proves only that the token was validly
// signed; every operation still re-checks that the user exists.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeMessage(w, http.StatusUnauthorized, "JWT token is missing!")
			return
		}

		userID, err := s.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, auth.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
