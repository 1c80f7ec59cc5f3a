package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type actorKey struct{}

// Actor is the authenticated caller recorded on audit events.
type Actor struct {
	UserID string
	Role   auth.Role
}

// ActorFromContext returns the actor stored by AuthRequired.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// AuthRequired rejects requests without a verified access token and stores the
// token's actor in the request context. It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrExpired) {
					response.HandleError(w, auth.ErrTokenExpired)
					return
				}
				response.Unauthorized(w, err.Error())
				return
			}

			actor, err := actorFromToken(r.Context(), token)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
		})
	}
}

func actorFromToken(ctx context.Context, token jwt.Token) (Actor, error) {
	if token == nil {
		return Actor{}, auth.ErrInvalidToken
	}
	claims, err := token.AsMap(ctx)
	if err != nil {
		return Actor{}, auth.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Actor{}, auth.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Actor{}, auth.ErrActorRequired
	}
	role, _ := claims["role"].(string)
	return Actor{UserID: userID, Role: auth.Role(role)}, nil
}
