package db

import "time"

// Permission caches the grants the API reported for one module.
type Permission struct {
	ModuleID   int       `gorm:"primaryKey;autoIncrement:false" json:"module_id"`
	ModuleName string    `json:"module_name"`
	CanView    bool      `json:"can_view"`
	CanCreate  bool      `json:"can_create"`
	CanEdit    bool      `json:"can_edit"`
	CanDelete  bool      `json:"can_delete"`
	UpdatedAt  time.Time `json:"updated_at"`
}
