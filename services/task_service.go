package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wink/models"
	"wink/utils"
)

// SubTaskInput describes one subtask in a create or patch-merge request.
// ID is ignored on create.
type SubTaskInput struct {
	ID     *uint `json:"id"`
	TeamID *uint `json:"team_id"`
}

type CreateTaskInput struct {
	TeamID   *uint          `json:"team_id" validate:"required"`
	Title    *string        `json:"title" validate:"required,max=255"`
	Content  *string        `json:"content" validate:"required"`
	Subtasks []SubTaskInput `json:"subtasks" validate:"required"`
}

// UpdateTaskInput is a partial update; nil fields are left untouched and a
// nil Subtasks skips the subtask merge entirely.
type UpdateTaskInput struct {
	TeamID   *uint           `json:"team_id"`
	Title    *string         `json:"title" validate:"omitempty,max=255"`
	Content  *string         `json:"content"`
	Subtasks *[]SubTaskInput `json:"subtasks"`
}

type TaskService struct {
	db        *gorm.DB
	validator *utils.Validator
	log       *logrus.Entry
	now       func() time.Time
}

func NewTaskService(db *gorm.DB, validator *utils.Validator, log *logrus.Entry) *TaskService {
	return &TaskService{
		db:        db,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// List returns the tasks visible to the caller's team: the team's own tasks
// plus tasks of other teams that assigned it at least one subtask.
func (s *TaskService) List(ctx context.Context, caller *models.User) ([]models.Task, error) {
	tasks := []models.Task{}
	if caller == nil || caller.TeamID == nil {
		return tasks, nil
	}
	teamID := *caller.TeamID
	db := s.db.WithContext(ctx)

	assigned := db.Model(&models.SubTask{}).Select("task_id").Where("team_id = ?", teamID)
	err := preloadSubTasks(db).
		Where("team_id = ?", teamID).
		Or("id IN (?)", assigned).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get returns a single task if the caller's team can see it.
func (s *TaskService) Get(ctx context.Context, caller *models.User, id uint) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	task, err := loadTask(db, id)
	if err != nil {
		return nil, err
	}
	if caller.InTeam(task.TeamID) {
		return task, nil
	}
	for _, st := range task.SubTasks {
		if caller.InTeam(st.TeamID) {
			return task, nil
		}
	}
	return nil, ErrForbidden
}

// Create stores a task and its subtasks atomically. Completion state is
// always server assigned.
func (s *TaskService) Create(ctx context.Context, creator *models.User, in *CreateTaskInput) (*models.Task, error) {
	if in == nil {
		return nil, fieldError("task", "task is required")
	}
	if errs := s.validator.Struct(in); errs != nil {
		return nil, newValidationError(errs)
	}

	db := s.db.WithContext(ctx)
	teams, err := existingTeams(db, referencedTeams(in.TeamID, in.Subtasks))
	if err != nil {
		return nil, err
	}

	errs := utils.FieldErrors{}
	if !teams[*in.TeamID] {
		errs.Add("team_id", "team does not exist")
	}
	checkNotBlank(errs, "title", in.Title)
	checkNotBlank(errs, "content", in.Content)
	checkSubTaskTeams(errs, in.Subtasks, teams)
	if !errs.Empty() {
		return nil, newValidationError(errs)
	}

	creatorID := creator.ID
	task := models.Task{
		CreateUserID: &creatorID,
		TeamID:       in.TeamID,
		Title:        strings.TrimSpace(*in.Title),
		Content:      strings.TrimSpace(*in.Content),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if len(in.Subtasks) == 0 {
			return nil
		}
		subtasks := make([]models.SubTask, 0, len(in.Subtasks))
		for _, spec := range in.Subtasks {
			subtasks = append(subtasks, models.SubTask{TaskID: task.ID, TeamID: spec.TeamID})
		}
		if err := tx.Create(&subtasks).Error; err != nil {
			return fmt.Errorf("create subtasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogEvent(s.log, "task_created", map[string]interface{}{
		"task_id":  task.ID,
		"user_id":  creator.ID,
		"subtasks": len(in.Subtasks),
	})
	return loadTask(db, task.ID)
}

// Update applies a partial update and, when subtasks are given, merges them:
// open subtasks missing from the request are deleted, named open subtasks are
// re-teamed, completed subtasks are left alone and specs without an id are
// created.
func (s *TaskService) Update(ctx context.Context, caller *models.User, id uint, in *UpdateTaskInput) (*models.Task, error) {
	db := s.db.WithContext(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		if !isCreator(task, caller) {
			return ErrForbidden
		}
		if in == nil {
			return fieldError("task", "task is required")
		}
		if errs := s.validator.Struct(in); errs != nil {
			return newValidationError(errs)
		}

		var specs []SubTaskInput
		if in.Subtasks != nil {
			specs = *in.Subtasks
		}
		teams, err := existingTeams(tx, referencedTeams(in.TeamID, specs))
		if err != nil {
			return err
		}
		var current []models.SubTask
		if err := tx.Where("task_id = ?", task.ID).Find(&current).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.SubTask, len(current))
		for _, st := range current {
			byID[st.ID] = st
		}

		errs := utils.FieldErrors{}
		if in.TeamID != nil && !teams[*in.TeamID] {
			errs.Add("team_id", "team does not exist")
		}
		if in.Title != nil {
			checkNotBlank(errs, "title", in.Title)
		}
		if in.Content != nil {
			checkNotBlank(errs, "content", in.Content)
		}
		checkSubTaskTeams(errs, specs, teams)
		for i, spec := range specs {
			if spec.ID == nil {
				continue
			}
			if _, ok := byID[*spec.ID]; !ok {
				errs.Add(fmt.Sprintf("subtasks[%d].id", i), "subtask does not exist")
			}
		}
		if !errs.Empty() {
			return newValidationError(errs)
		}

		updates := map[string]interface{}{}
		if in.TeamID != nil {
			updates["team_id"] = *in.TeamID
		}
		if in.Title != nil {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Content != nil {
			updates["content"] = strings.TrimSpace(*in.Content)
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("update task: %w", err)
			}
		}

		if in.Subtasks == nil {
			return nil
		}
		if err := mergeSubTasks(tx, task.ID, specs, byID); err != nil {
			return err
		}
		return syncTaskCompletion(tx, task, s.now())
	})
	if err != nil {
		return nil, err
	}

	return loadTask(db, id)
}

// Delete removes a task together with all of its subtasks.
func (s *TaskService) Delete(ctx context.Context, caller *models.User, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, id)
		if err != nil {
			return err
		}
		if !isCreator(task, caller) {
			return ErrForbidden
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.SubTask{}).Error; err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		if err := tx.Delete(&models.Task{}, task.ID).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.LogEvent(s.log, "task_deleted", map[string]interface{}{
		"task_id": id,
		"user_id": caller.ID,
	})
	return nil
}

func mergeSubTasks(tx *gorm.DB, taskID uint, specs []SubTaskInput, current map[uint]models.SubTask) error {
	keep := make([]uint, 0, len(specs))
	for _, spec := range specs {
		if spec.ID != nil {
			keep = append(keep, *spec.ID)
		}
	}

	stale := tx.Where("task_id = ? AND is_complete = ?", taskID, false)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.SubTask{}).Error; err != nil {
		return fmt.Errorf("delete stale subtasks: %w", err)
	}

	var created []models.SubTask
	for _, spec := range specs {
		if spec.ID == nil {
			created = append(created, models.SubTask{TaskID: taskID, TeamID: spec.TeamID})
			continue
		}
		if current[*spec.ID].IsComplete {
			continue
		}
		if err := tx.Model(&models.SubTask{}).
			Where("id = ?", *spec.ID).
			Update("team_id", *spec.TeamID).Error; err != nil {
			return fmt.Errorf("update subtask %d: %w", *spec.ID, err)
		}
	}

	if len(created) > 0 {
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("create subtasks: %w", err)
		}
	}
	return nil
}

func preloadSubTasks(db *gorm.DB) *gorm.DB {
	return db.Preload("SubTasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

func loadTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := preloadSubTasks(db).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// lockTask reads a task and holds its row lock until the transaction ends.
func lockTask(tx *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func isCreator(task *models.Task, caller *models.User) bool {
	return caller != nil && task.CreateUserID != nil && *task.CreateUserID == caller.ID
}

func referencedTeams(teamID *uint, specs []SubTaskInput) []uint {
	ids := make([]uint, 0, len(specs)+1)
	if teamID != nil {
		ids = append(ids, *teamID)
	}
	for _, spec := range specs {
		if spec.TeamID != nil {
			ids = append(ids, *spec.TeamID)
		}
	}
	return ids
}

func checkNotBlank(errs utils.FieldErrors, field string, value *string) {
	if value != nil && strings.TrimSpace(*value) == "" {
		errs.Add(field, field+" may not be blank")
	}
}

func checkSubTaskTeams(errs utils.FieldErrors, specs []SubTaskInput, teams map[uint]bool) {
	for i, spec := range specs {
		field := fmt.Sprintf("subtasks[%d].team_id", i)
		switch {
		case spec.TeamID == nil:
			errs.Add(field, "team_id is required")
		case !teams[*spec.TeamID]:
			errs.Add(field, "team does not exist")
		}
	}
}
