package models

// Team groups users and is the visibility and assignment boundary for tasks.
type Team struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}
