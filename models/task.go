package models

import "time"

// Task is a unit of work created by a user and owned by a team.
type Task struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreateUserID *uint `gorm:"index" json:"create_user_id"`
	CreateUser   *User `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	TeamID       *uint `gorm:"index" json:"team_id"`
	Team         *Team `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	Title   string `gorm:"size:255;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`

	IsComplete    bool       `gorm:"default:false;not null" json:"is_complete"`
	CompletedDate *time.Time `json:"completed_date"`

	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modified_at"`

	SubTasks []SubTask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks"`
}

// SubTask is a piece of a Task that may be assigned to a team other than the task's own.
type SubTask struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TeamID *uint `gorm:"index" json:"team_id"`
	Team   *Team `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	TaskID uint  `gorm:"index;not null" json:"task_id"`

	IsComplete    bool       `gorm:"default:false;not null" json:"is_complete"`
	CompletedDate *time.Time `json:"completed_date"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modified_at"`
}

// MarkComplete sets the completion flag and keeps completed_date paired with it.
func (s *SubTask) MarkComplete(complete bool, now time.Time) {
	s.IsComplete = complete
	if complete {
		s.CompletedDate = &now
		return
	}
	s.CompletedDate = nil
}

// MarkComplete sets the completion flag. An already complete task keeps its
// original completed_date.
func (t *Task) MarkComplete(complete bool, now time.Time) {
	if !complete {
		t.IsComplete = false
		t.CompletedDate = nil
		return
	}
	if t.IsComplete && t.CompletedDate != nil {
		return
	}
	t.IsComplete = true
	t.CompletedDate = &now
}

// SubTasksComplete reports whether a task with the given subtasks counts as
// complete: it needs at least one subtask and none of them may be open.
func SubTasksComplete(total, incomplete int64) bool {
	return total > 0 && incomplete == 0
}

// All returns every model managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&Team{},
		&User{},
		&Task{},
		&SubTask{},
	}
}
