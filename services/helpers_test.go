package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wink/config"
	"wink/models"
	"wink/utils"
)

const testPassword = "s3cret-Pass"

type testEnv struct {
	db       *gorm.DB
	teams    *TeamService
	tasks    *TaskService
	subtasks *SubTaskService
	auth     *AuthService
	tokens   *utils.TokenIssuer
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:       "sqlite",
		DBPath:         "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		DBLogLevel:     "silent",
	}
	db, err := config.ConnectDB(cfg, discardLogger())
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
	return db
}

func discardLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := discardLogger()
	validator := utils.NewValidator(utils.DefaultPasswordPolicy())
	tokens := utils.NewTokenIssuer("test-secret", 15*time.Minute, time.Hour)

	return &testEnv{
		db:       db,
		teams:    NewTeamService(db, validator, log),
		tasks:    NewTaskService(db, validator, log),
		subtasks: NewSubTaskService(db, log),
		auth:     NewAuthService(db, validator, tokens, log),
		tokens:   tokens,
	}
}

func (e *testEnv) team(t *testing.T, name string) *models.Team {
	t.Helper()
	team, err := e.teams.Create(context.Background(), CreateTeamInput{Name: name})
	if err != nil {
		t.Fatalf("create team %q: %v", name, err)
	}
	return team
}

// user inserts a member of team directly, skipping bcrypt.
func (e *testEnv) user(t *testing.T, email string, team *models.Team) *models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", IsActive: true}
	if team != nil {
		user.TeamID = &team.ID
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user %q: %v", email, err)
	}
	return &user
}

// task creates a task owned by owner's team with one subtask per given team.
func (e *testEnv) task(t *testing.T, owner *models.User, title string, subtaskTeams ...*models.Team) *models.Task {
	t.Helper()
	specs := make([]SubTaskInput, 0, len(subtaskTeams))
	for _, team := range subtaskTeams {
		specs = append(specs, SubTaskInput{TeamID: utils.Pointer(team.ID)})
	}
	task, err := e.tasks.Create(context.Background(), owner, &CreateTaskInput{
		TeamID:   owner.TeamID,
		Title:    utils.Pointer(title),
		Content:  utils.Pointer("content of " + title),
		Subtasks: specs,
	})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func (e *testEnv) reloadTask(t *testing.T, id uint) *models.Task {
	t.Helper()
	task, err := loadTask(e.db, id)
	if err != nil {
		t.Fatalf("load task %d: %v", id, err)
	}
	return task
}

func (e *testEnv) complete(t *testing.T, caller *models.User, subtaskID uint, done bool) *models.SubTask {
	t.Helper()
	st, err := e.subtasks.SetCompletion(context.Background(), caller, subtaskID, &done)
	if err != nil {
		t.Fatalf("set completion of subtask %d: %v", subtaskID, err)
	}
	return st
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error on %q, got %v", field, err)
	}
	if !verr.Fields.Has(field) {
		t.Fatalf("expected error on %q, got %s", field, verr.Fields)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
