package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

type contextKey string

const actorContextKey contextKey = "actor"

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

// Authenticator resolves bearer credentials to an Actor. Admin users carry
// a signed JWT, teams and members carry the opaque access token issued at
// creation time.
type Authenticator struct {
	jwtSecret  []byte
	teamRepo   repositories.TeamRepository
	memberRepo repositories.MemberRepository
}

func NewAuthenticator(jwtSecret string, teamRepo repositories.TeamRepository, memberRepo repositories.MemberRepository) *Authenticator {
	return &Authenticator{
		jwtSecret:  []byte(jwtSecret),
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
	}
}

// Authenticate requires a valid bearer credential and stores the resolved
// Actor in the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "missing or malformed Authorization header")
			return
		}

		actor, err := a.resolveActor(r.Context(), token)
		if err != nil {
			unauthorized(w, "invalid or expired credentials")
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin passes only admin and super admin actors.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			unauthorized(w, "authentication required")
			return
		}
		if !actor.IsAdmin() {
			forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperAdmin passes only super admin actors.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			unauthorized(w, "authentication required")
			return
		}
		if actor.Type != models.ActorSuperAdmin {
			forbidden(w, "super admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the actor stored by Authenticate.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	return actor, ok
}

// WithActor is used by tests to seed a request context without going
// through the HTTP middleware.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func (a *Authenticator) resolveActor(ctx context.Context, token string) (models.Actor, error) {
	// JWTs are three dot-separated segments; opaque access tokens never
	// contain dots. Cheap disambiguation without a failed parse.
	if strings.Count(token, ".") == 2 {
		return a.resolveAdmin(token)
	}

	if team, err := a.teamRepo.GetByAccessToken(ctx, token); err == nil {
		return models.Actor{Type: models.ActorTeam, TeamID: team.ID}, nil
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return models.Actor{}, err
	}

	member, err := a.memberRepo.GetByAccessToken(ctx, token)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{Type: models.ActorMember, TeamID: member.TeamID, MemberID: member.ID}, nil
}

func (a *Authenticator) resolveAdmin(tokenString string) (models.Actor, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, errors.New("invalid token")
	}

	userIDFloat, ok := claims[jwtClaimUserID].(float64)
	if !ok || userIDFloat <= 0 {
		return models.Actor{}, errors.New("missing or invalid user_id claim")
	}
	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return models.Actor{}, errors.New("missing role claim")
	}

	var actorType models.ActorType
	switch models.UserRole(roleStr) {
	case models.RoleSuperAdmin:
		actorType = models.ActorSuperAdmin
	case models.RoleAdmin:
		actorType = models.ActorAdmin
	default:
		return models.Actor{}, errors.New("unknown role claim")
	}

	return models.Actor{Type: actorType, UserID: int(userIDFloat)}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusForbidden)
}
