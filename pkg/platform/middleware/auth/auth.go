// Package auth establishes actor identity from a bearer token. It only
// resolves WHO is calling; whether that actor may approve or reject a given
// request is the caller-side authorization layer's concern, not enforced here.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "warga/pkg/domain"
	"warga/pkg/requestcontext"
)

// Verifier validates bearer tokens and extracts the actor ID claim.
type Verifier struct {
	signingKey []byte
}

// NewVerifier constructs a Verifier with the given HMAC signing key.
func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// ActorID parses and verifies a token, returning the actor ID from the
// subject claim.
func (v *Verifier) ActorID(tokenString string) (id.ActorID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return id.ActorID{}, fmt.Errorf("parse token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return id.ActorID{}, fmt.Errorf("token subject: %w", err)
	}
	actorID, err := id.ParseActorID(sub)
	if err != nil {
		return id.ActorID{}, fmt.Errorf("token subject: %w", err)
	}
	return actorID, nil
}

// RequireActor rejects requests without a valid bearer token and stores the
// actor ID in the request context for handlers and services.
func RequireActor(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			actorID, err := verifier.ActorID(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}
