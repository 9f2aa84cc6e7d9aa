package dto

import (
	"github.com/google/uuid"

	"smartstudy_backend/internals/features/comments/model"
	"smartstudy_backend/internals/features/comments/service"
)

type CreateCommentRequest struct {
	ContentType string     `json:"content_type" validate:"required,oneof=lecture solution"`
	TargetID    uuid.UUID  `json:"target_id" validate:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Text        string     `json:"text" validate:"required,notblank,max=2000"`
}

func (r *CreateCommentRequest) Target() service.Target {
	return service.Target{Type: r.ContentType, ID: r.TargetID}
}

type ReactRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like dislike"`
}

// ValidTarget: content_type dari query string.
func ValidTarget(t string) bool {
	return t == model.TargetLecture || t == model.TargetSolution
}
