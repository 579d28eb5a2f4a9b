package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobaarena/esports-platform/models"
	"github.com/mobaarena/esports-platform/repositories"
)

const testSecret = "test-secret"

type stubTeamRepo struct {
	byToken map[string]*models.Team
}

func (r *stubTeamRepo) Create(context.Context, repositories.SQLExecutor, *models.Team) error {
	return nil
}
func (r *stubTeamRepo) GetByID(context.Context, int) (*models.Team, error) {
	return nil, repositories.ErrTeamNotFound
}
func (r *stubTeamRepo) GetByAccessToken(_ context.Context, token string) (*models.Team, error) {
	if team, ok := r.byToken[token]; ok {
		return team, nil
	}
	return nil, repositories.ErrTeamNotFound
}
func (r *stubTeamRepo) ListByEvent(context.Context, int) ([]models.Team, error) { return nil, nil }
func (r *stubTeamRepo) CountByEvent(context.Context, repositories.SQLExecutor, int) (int, error) {
	return 0, nil
}
func (r *stubTeamRepo) Update(context.Context, *models.Team) error        { return nil }
func (r *stubTeamRepo) UpdateLogoKey(context.Context, int, *string) error { return nil }
func (r *stubTeamRepo) Delete(context.Context, int) error                 { return nil }

type stubMemberRepo struct {
	byToken map[string]*models.Member
}

func (r *stubMemberRepo) Create(context.Context, *models.Member) error { return nil }
func (r *stubMemberRepo) GetByID(context.Context, int) (*models.Member, error) {
	return nil, repositories.ErrMemberNotFound
}
func (r *stubMemberRepo) GetByAccessToken(_ context.Context, token string) (*models.Member, error) {
	if member, ok := r.byToken[token]; ok {
		return member, nil
	}
	return nil, repositories.ErrMemberNotFound
}
func (r *stubMemberRepo) ListByTeam(context.Context, int) ([]models.Member, error) { return nil, nil }
func (r *stubMemberRepo) Update(context.Context, *models.Member) error             { return nil }
func (r *stubMemberRepo) ClearCaptain(context.Context, repositories.SQLExecutor, int) error {
	return nil
}
func (r *stubMemberRepo) Delete(context.Context, int) error { return nil }

func newTestAuthenticator(teams map[string]*models.Team, members map[string]*models.Member) *Authenticator {
	return NewAuthenticator(testSecret,
		&stubTeamRepo{byToken: teams},
		&stubMemberRepo{byToken: members},
	)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// runAuth sends a request through Authenticate and reports the resolved
// actor (if the chain reached the inner handler) and the response status.
func runAuth(auth *Authenticator, authorization string) (models.Actor, int) {
	var actor models.Actor
	reached := false
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ = ActorFromContext(r.Context())
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !reached {
		return models.Actor{}, rec.Code
	}
	return actor, rec.Code
}

func TestAuthenticateAdminJWT(t *testing.T) {
	auth := newTestAuthenticator(nil, nil)
	token := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	actor, code := runAuth(auth, "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ActorAdmin, actor.Type)
	assert.Equal(t, 7, actor.UserID)
}

func TestAuthenticateSuperAdminJWT(t *testing.T) {
	auth := newTestAuthenticator(nil, nil)
	token := signToken(t, jwt.MapClaims{
		"user_id": 1,
		"role":    "super_admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	actor, code := runAuth(auth, "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ActorSuperAdmin, actor.Type)
}

func TestAuthenticateRejectsExpiredJWT(t *testing.T) {
	auth := newTestAuthenticator(nil, nil)
	token := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    "admin",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	_, code := runAuth(auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthenticateRejectsUnknownRole(t *testing.T) {
	auth := newTestAuthenticator(nil, nil)
	token := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    "viewer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	_, code := runAuth(auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthenticateTeamAccessToken(t *testing.T) {
	auth := newTestAuthenticator(map[string]*models.Team{
		"aabbcc": {ID: 12, EventID: 3},
	}, nil)

	actor, code := runAuth(auth, "Bearer aabbcc")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ActorTeam, actor.Type)
	assert.Equal(t, 12, actor.TeamID)
}

func TestAuthenticateMemberAccessToken(t *testing.T) {
	auth := newTestAuthenticator(nil, map[string]*models.Member{
		"ddeeff": {ID: 31, TeamID: 12},
	})

	actor, code := runAuth(auth, "Bearer ddeeff")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ActorMember, actor.Type)
	assert.Equal(t, 12, actor.TeamID)
	assert.Equal(t, 31, actor.MemberID)
}

func TestAuthenticateRejectsUnknownToken(t *testing.T) {
	auth := newTestAuthenticator(nil, nil)

	_, code := runAuth(auth, "Bearer nosuchtoken")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	auth := newTestAuthenticator(nil, nil)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		_, code := runAuth(auth, header)
		assert.Equal(t, http.StatusUnauthorized, code, "header %q", header)
	}
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name  string
		actor models.Actor
		want  int
	}{
		{"admin passes", models.Actor{Type: models.ActorAdmin, UserID: 1}, http.StatusOK},
		{"super admin passes", models.Actor{Type: models.ActorSuperAdmin, UserID: 1}, http.StatusOK},
		{"team rejected", models.Actor{Type: models.ActorTeam, TeamID: 2}, http.StatusForbidden},
		{"member rejected", models.Actor{Type: models.ActorMember, MemberID: 3}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithActor(req.Context(), tc.actor))
			rec := httptest.NewRecorder()
			RequireAdmin(inner).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), models.Actor{Type: models.ActorAdmin, UserID: 1}))
	rec := httptest.NewRecorder()
	RequireSuperAdmin(inner).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), models.Actor{Type: models.ActorSuperAdmin, UserID: 1}))
	rec = httptest.NewRecorder()
	RequireSuperAdmin(inner).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
