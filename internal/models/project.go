package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/gorm"
)

// Project is an annotated video with optional audio tracks
type Project struct {
	ID         string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Video      string    `json:"video" gorm:"not null"`
	Audio      string    `json:"audio"`
	AudioFinal string    `json:"audiofinal" gorm:"column:audiofinal"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// BeforeCreate assigns an ID to new projects
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave trims fields and requires a video
func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.Video = strings.TrimSpace(p.Video)
	p.Audio = strings.TrimSpace(p.Audio)
	p.AudioFinal = strings.TrimSpace(p.AudioFinal)
	if p.Video == "" {
		return apperrors.MissingFieldError("video")
	}
	return nil
}
