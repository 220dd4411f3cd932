package models

import "time"

const (
	ConfigMaxCourseSelections = "maxCourseSelections"
	ConfigMinGPAForTutor      = "minGpaForTutor"
)

// Configuration represents a persisted key/value setting.
type Configuration struct {
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	Description string    `db:"description" json:"description"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateConfigurationRequest sets the value of a single key.
type UpdateConfigurationRequest struct {
	Value       string `json:"value" validate:"required"`
	Description string `json:"description" validate:"max=500"`
}
