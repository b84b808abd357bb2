package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wink/config"
	"wink/models"
	"wink/routes"
)

const testPassword = "s3cret-Pass"

type server struct {
	app *fiber.App
	db  *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		Environment:     "test",
		DBDriver:        "sqlite",
		DBPath:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		DBMaxIdleConns:  1,
		DBMaxOpenConns:  1,
		DBLogLevel:      "silent",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Password: config.PasswordConfig{
			MinLength:       8,
			RequiredClasses: []string{"digit", "upper", "lower", "special"},
		},
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}

	db, err := config.ConnectDB(cfg, logrus.NewEntry(log))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &server{app: routes.NewApp(db, cfg, log, nil), db: db}
}

// call sends a request and decodes a JSON response into out when out is non-nil.
func (s *server) call(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *server) team(t *testing.T, name string) *models.Team {
	t.Helper()
	team := models.Team{Name: name}
	if err := s.db.Create(&team).Error; err != nil {
		t.Fatalf("create team: %v", err)
	}
	return &team
}

// login signs up a member of team and returns an access token.
func (s *server) login(t *testing.T, email string, team *models.Team) string {
	t.Helper()

	status := s.call(t, http.MethodPost, "/api/v1/signup", "", fiber.Map{
		"email":    email,
		"password": testPassword,
		"team_id":  team.ID,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("signup %s: status %d", email, status)
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	status = s.call(t, http.MethodPost, "/api/v1/login", "", fiber.Map{
		"email":    email,
		"password": testPassword,
	}, &tokens)
	if status != http.StatusOK || tokens.AccessToken == "" {
		t.Fatalf("login %s: status %d", email, status)
	}
	return tokens.AccessToken
}

type errorBody struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details map[string][]string `json:"details"`
}
