package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wink/models"
	"wink/utils"
)

type SubTaskService struct {
	db  *gorm.DB
	log *logrus.Entry
	now func() time.Time
}

func NewSubTaskService(db *gorm.DB, log *logrus.Entry) *SubTaskService {
	return &SubTaskService{db: db, log: log, now: time.Now}
}

func (s *SubTaskService) Get(ctx context.Context, id uint) (*models.SubTask, error) {
	return findSubTask(s.db.WithContext(ctx), id)
}

// SetCompletion toggles a subtask on behalf of a member of its team and
// re-evaluates the parent task's completion.
func (s *SubTaskService) SetCompletion(ctx context.Context, caller *models.User, id uint, isComplete *bool) (*models.SubTask, error) {
	db := s.db.WithContext(ctx)

	var subtask *models.SubTask
	err := db.Transaction(func(tx *gorm.DB) error {
		st, task, err := lockSubTask(tx, id)
		if err != nil {
			return err
		}
		if isComplete == nil {
			return fieldError("is_complete", "is_complete is required")
		}
		if !caller.InTeam(st.TeamID) {
			return ErrForbidden
		}

		now := s.now()
		st.MarkComplete(*isComplete, now)
		if err := tx.Model(&models.SubTask{}).
			Where("id = ?", st.ID).
			Updates(map[string]interface{}{
				"is_complete":    st.IsComplete,
				"completed_date": st.CompletedDate,
			}).Error; err != nil {
			return fmt.Errorf("update subtask: %w", err)
		}
		if err := syncTaskCompletion(tx, task, now); err != nil {
			return fmt.Errorf("sync task %d: %w", task.ID, err)
		}
		subtask = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogEvent(s.log, "subtask_completion_changed", map[string]interface{}{
		"subtask_id":  subtask.ID,
		"task_id":     subtask.TaskID,
		"is_complete": subtask.IsComplete,
		"user_id":     caller.ID,
	})
	return findSubTask(db, id)
}

// Delete removes an open subtask. Only the creator of the parent task may do
// so, and the parent's completion is re-evaluated afterwards.
func (s *SubTaskService) Delete(ctx context.Context, caller *models.User, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, task, err := lockSubTask(tx, id)
		if err != nil {
			return err
		}
		if !isCreator(task, caller) {
			return ErrForbidden
		}
		if st.IsComplete {
			return fieldError("subtask", "completed subtasks cannot be deleted")
		}
		if err := tx.Delete(&models.SubTask{}, st.ID).Error; err != nil {
			return fmt.Errorf("delete subtask: %w", err)
		}
		return syncTaskCompletion(tx, task, s.now())
	})
}

// lockSubTask locks the parent task row and then reads the subtask, so the
// returned state cannot change until the transaction ends.
func lockSubTask(tx *gorm.DB, id uint) (*models.SubTask, *models.Task, error) {
	st, err := findSubTask(tx, id)
	if err != nil {
		return nil, nil, err
	}
	task, err := lockTask(tx, st.TaskID)
	if err != nil {
		return nil, nil, err
	}
	st, err = findSubTask(tx, id)
	if err != nil {
		return nil, nil, err
	}
	return st, task, nil
}

func findSubTask(db *gorm.DB, id uint) (*models.SubTask, error) {
	var st models.SubTask
	if err := db.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}
