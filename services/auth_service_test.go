package services

import (
	"context"
	"errors"
	"testing"

	"wink/models"
	"wink/utils"
)

func signup(t *testing.T, env *testEnv, email string, team *models.Team) uint {
	t.Helper()
	id, err := env.auth.Signup(context.Background(), SignupInput{
		Email:    email,
		Password: testPassword,
		TeamID:   &team.ID,
	})
	if err != nil {
		t.Fatalf("Signup(%s): %v", email, err)
	}
	return id
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.team(t, "a")

	id := signup(t, env, "  New.User@Example.com ", team)

	var user models.User
	if err := env.db.First(&user, id).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Email != "new.user@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == testPassword || !utils.CheckPassword(user.PasswordHash, testPassword) {
		t.Error("password must be stored as a bcrypt hash")
	}
	if !user.IsActive || user.TeamID == nil || *user.TeamID != team.ID {
		t.Errorf("unexpected user state: %+v", user)
	}

	missing := uint(4242)
	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"duplicate email", SignupInput{Email: "NEW.user@example.com", Password: testPassword, TeamID: &team.ID}, "email"},
		{"invalid email", SignupInput{Email: "not-an-email", Password: testPassword, TeamID: &team.ID}, "email"},
		{"short password", SignupInput{Email: "a@example.com", Password: "aB1!", TeamID: &team.ID}, "password"},
		{"numeric password", SignupInput{Email: "a@example.com", Password: "1234567890", TeamID: &team.ID}, "password"},
		{"missing team", SignupInput{Email: "a@example.com", Password: testPassword}, "team_id"},
		{"unknown team", SignupInput{Email: "a@example.com", Password: testPassword, TeamID: &missing}, "team_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Signup(ctx, tt.input)
			requireFieldError(t, err, tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.team(t, "a")
	id := signup(t, env, "ann@example.com", team)
	signup(t, env, "off@example.com", team)
	env.db.Model(&models.User{}).Where("email = ?", "off@example.com").Update("is_active", false)

	pair, err := env.auth.Login(ctx, LoginInput{Email: "Ann@Example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := env.tokens.Parse(pair.AccessToken, utils.AccessToken)
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	if claims.UserID != id {
		t.Errorf("token user = %d, want %d", claims.UserID, id)
	}

	for _, in := range []LoginInput{
		{Email: "ann@example.com", Password: "wrong-Pass1"},
		{Email: "nobody@example.com", Password: testPassword},
		{Email: "off@example.com", Password: testPassword},
	} {
		if _, err := env.auth.Login(ctx, in); !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("Login(%s): got %v, want ErrAuthenticationFailed", in.Email, err)
		}
	}

	_, err = env.auth.Login(ctx, LoginInput{})
	requireFieldError(t, err, "email")
	requireFieldError(t, err, "password")
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.team(t, "a")
	signup(t, env, "ann@example.com", team)

	pair, err := env.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := env.auth.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("refresh with access token: got %v", err)
	}
	if _, err := env.auth.Authenticate(ctx, pair.RefreshToken); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("authenticate with refresh token: got %v", err)
	}

	refreshed, err := env.auth.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	user, err := env.auth.Authenticate(ctx, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := env.auth.Logout(ctx, user); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	for _, token := range []string{pair.AccessToken, refreshed.AccessToken} {
		if _, err := env.auth.Authenticate(ctx, token); !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("token survived logout: %v", err)
		}
	}
	if _, err := env.auth.Refresh(ctx, refreshed.RefreshToken); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("refresh token survived logout: %v", err)
	}
}
