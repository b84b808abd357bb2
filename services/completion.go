package services

import (
	"time"

	"gorm.io/gorm"

	"wink/models"
)

// syncTaskCompletion recomputes a task's completion from its subtasks and
// persists it. Callers run it inside the transaction that changed the subtasks.
func syncTaskCompletion(tx *gorm.DB, task *models.Task, now time.Time) error {
	var total, incomplete int64
	if err := tx.Model(&models.SubTask{}).
		Where("task_id = ?", task.ID).
		Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.SubTask{}).
		Where("task_id = ? AND is_complete = ?", task.ID, false).
		Count(&incomplete).Error; err != nil {
		return err
	}

	task.MarkComplete(models.SubTasksComplete(total, incomplete), now)
	return tx.Model(&models.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"is_complete":    task.IsComplete,
			"completed_date": task.CompletedDate,
		}).Error
}
