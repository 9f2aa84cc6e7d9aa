package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetLecture  = "lecture"
	TargetSolution = "solution"

	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

type CommentModel struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	ContentType string     `gorm:"column:content_type;size:20;not null" json:"content_type"`
	LectureID   *uuid.UUID `gorm:"column:lecture_id;type:uuid;index" json:"lecture_id,omitempty"`
	SolutionID  *uuid.UUID `gorm:"column:solution_id;type:uuid;index" json:"solution_id,omitempty"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid;index" json:"parent_id,omitempty"`
	Text        string     `gorm:"column:text;type:text;not null" json:"text"`
	IsActive    bool       `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CommentModel) TableName() string { return "comments" }

func (m *CommentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TargetID: id lecture atau solution sesuai content_type
func (m CommentModel) TargetID() uuid.UUID {
	if m.ContentType == TargetSolution && m.SolutionID != nil {
		return *m.SolutionID
	}
	if m.LectureID != nil {
		return *m.LectureID
	}
	return uuid.Nil
}

// CommentReactionModel: like/dislike saling eksklusif per (comment, user)
type CommentReactionModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"column:comment_id;type:uuid;not null;uniqueIndex:uq_comment_reaction" json:"comment_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_comment_reaction" json:"user_id"`
	Kind      string    `gorm:"column:kind;size:10;not null" json:"kind"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CommentReactionModel) TableName() string { return "comment_reactions" }

func (m *CommentReactionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
