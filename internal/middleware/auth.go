package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/pkg/utils"

	"github.com/google/uuid"
)

type ActorResolver interface {
	ParseToken(token string) (uuid.UUID, error)
	ResolveActor(ctx context.Context, userID uuid.UUID) (entities.Actor, error)
}

type actorKey struct{}

// Auth requires a valid Bearer token and puts the resolved actor into
// the request context.
func Auth(resolver ActorResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				utils.WriteError(w, "missing access token", http.StatusUnauthorized)
				return
			}

			userID, err := resolver.ParseToken(token)
			if err != nil {
				utils.WriteError(w, "invalid access token", http.StatusUnauthorized)
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), userID)
			if err != nil {
				if errors.Is(err, entities.ErrAccountInactive) {
					utils.WriteError(w, entities.ErrAccountInactive.Error(), http.StatusForbidden)
					return
				}
				utils.WriteError(w, "invalid access token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole guards a subtree; Auth must run first.
func RequireRole(roles ...entities.Role) func(next http.Handler) http.Handler {
	allowed := make(map[entities.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				utils.WriteError(w, "missing access token", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[actor.User.Role]; !ok {
				utils.WriteError(w, entities.ErrForbidden.Error(), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ActorFromContext(ctx context.Context) (entities.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(entities.Actor)
	return actor, ok
}
