package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	batchModel "smartstudy_backend/internals/features/batches/model"
	batchRepo "smartstudy_backend/internals/features/batches/repository"
	"smartstudy_backend/internals/features/comments/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
)

var (
	ErrTargetNotFound = errors.New("comment target not found")
	ErrNoAccess       = errors.New("enroll in the batch to join the discussion")
	ErrParentMismatch = errors.New("parent comment belongs to another target")
	ErrNotOwner       = errors.New("only the owner or an admin can delete this comment")
	ErrNestedReply    = errors.New("replies cannot be nested")
)

type CommentService struct {
	DB       *gorm.DB
	Notifier notifService.Notifier
}

func New(db *gorm.DB, n notifService.Notifier) *CommentService {
	return &CommentService{DB: db, Notifier: n}
}

type Target struct {
	Type string
	ID   uuid.UUID
}

func (t Target) column() string {
	if t.Type == model.TargetSolution {
		return "solution_id"
	}
	return "lecture_id"
}

// lectureOf: target → lecture pemilik (solution → dpp → lecture).
func (s *CommentService) lectureOf(ctx context.Context, t Target) (uuid.UUID, error) {
	db := s.DB.WithContext(ctx)
	switch t.Type {
	case model.TargetLecture:
		var l batchModel.BatchLectureModel
		if err := db.Select("id").First(&l, "id = ?", t.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, ErrTargetNotFound
			}
			return uuid.Nil, err
		}
		return l.ID, nil
	case model.TargetSolution:
		var row struct{ LectureID uuid.UUID }
		err := db.Table("dpp_solutions AS s").
			Select("d.lecture_id AS lecture_id").
			Joins("JOIN dpps d ON d.id = s.dpp_id").
			Where("s.id = ?", t.ID).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrTargetNotFound
		}
		return row.LectureID, err
	}
	return uuid.Nil, ErrTargetNotFound
}

// CheckAccess: staff bebas, siswa harus terdaftar di batch pemilik lecture.
func (s *CommentService) CheckAccess(ctx context.Context, userID uuid.UUID, staff bool, t Target) error {
	lectureID, err := s.lectureOf(ctx, t)
	if err != nil {
		return err
	}
	if staff {
		return nil
	}
	ok, err := batchRepo.IsEnrolledForLecture(ctx, s.DB, userID, lectureID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAccess
	}
	return nil
}

/* ===================== LIST ===================== */

type CommentView struct {
	model.CommentModel
	UserName   string        `json:"user_name"`
	Likes      int64         `json:"likes"`
	Dislikes   int64         `json:"dislikes"`
	MyReaction string        `json:"my_reaction,omitempty"`
	ReplyCount int           `json:"reply_count"`
	Replies    []CommentView `json:"replies,omitempty"`
}

type reactionCount struct {
	CommentID uuid.UUID
	Kind      string
	N         int64
}

// List: komentar top-level (terbaru dulu) + balasan (terlama dulu) + jumlah reaksi.
func (s *CommentService) List(ctx context.Context, viewer uuid.UUID, t Target, offset, limit int) ([]CommentView, int64, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&model.CommentModel{}).
		Where("content_type = ? AND "+t.column()+" = ? AND parent_id IS NULL AND is_active = ?", t.Type, t.ID, true)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tops []model.CommentModel
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tops).Error; err != nil {
		return nil, 0, err
	}
	out := make([]CommentView, 0, len(tops))
	if len(tops) == 0 {
		return out, total, nil
	}

	topIDs := make([]uuid.UUID, 0, len(tops))
	for _, c := range tops {
		topIDs = append(topIDs, c.ID)
	}
	var replies []model.CommentModel
	if err := db.Where("parent_id IN ? AND is_active = ?", topIDs, true).Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, 0, err
	}

	all := append(append([]model.CommentModel{}, tops...), replies...)
	ids := make([]uuid.UUID, 0, len(all))
	userIDs := make([]uuid.UUID, 0, len(all))
	for _, c := range all {
		ids = append(ids, c.ID)
		userIDs = append(userIDs, c.UserID)
	}

	var counts []reactionCount
	if err := db.Model(&model.CommentReactionModel{}).
		Select("comment_id, kind, COUNT(*) AS n").
		Where("comment_id IN ?", ids).
		Group("comment_id, kind").
		Scan(&counts).Error; err != nil {
		return nil, 0, err
	}
	var mine []model.CommentReactionModel
	if viewer != uuid.Nil {
		if err := db.Where("comment_id IN ? AND user_id = ?", ids, viewer).Find(&mine).Error; err != nil {
			return nil, 0, err
		}
	}
	var users []struct {
		ID       uuid.UUID
		UserName string
	}
	if err := db.Table("users").Select("id, user_name").Where("id IN ?", userIDs).Scan(&users).Error; err != nil {
		return nil, 0, err
	}

	names := map[uuid.UUID]string{}
	for _, u := range users {
		names[u.ID] = u.UserName
	}
	likes, dislikes := map[uuid.UUID]int64{}, map[uuid.UUID]int64{}
	for _, rc := range counts {
		if rc.Kind == model.ReactionLike {
			likes[rc.CommentID] = rc.N
		} else {
			dislikes[rc.CommentID] = rc.N
		}
	}
	my := map[uuid.UUID]string{}
	for _, r := range mine {
		my[r.CommentID] = r.Kind
	}
	view := func(c model.CommentModel) CommentView {
		return CommentView{
			CommentModel: c,
			UserName:     names[c.UserID],
			Likes:        likes[c.ID],
			Dislikes:     dislikes[c.ID],
			MyReaction:   my[c.ID],
		}
	}

	byParent := map[uuid.UUID][]CommentView{}
	for _, r := range replies {
		byParent[*r.ParentID] = append(byParent[*r.ParentID], view(r))
	}
	for _, c := range tops {
		v := view(c)
		v.Replies = byParent[c.ID]
		v.ReplyCount = len(v.Replies)
		out = append(out, v)
	}
	return out, total, nil
}

/* ===================== ADD ===================== */

// Add: parent (kalau ada) harus top-level dan target-nya sama.
// Balasan ke komentar orang lain memicu notifikasi ke pemilik parent.
func (s *CommentService) Add(ctx context.Context, userID uuid.UUID, t Target, parentID *uuid.UUID, text string) (*model.CommentModel, error) {
	c := model.CommentModel{
		UserID:      userID,
		ContentType: t.Type,
		ParentID:    parentID,
		Text:        strings.TrimSpace(text),
		IsActive:    true,
	}
	id := t.ID
	if t.Type == model.TargetSolution {
		c.SolutionID = &id
	} else {
		c.LectureID = &id
	}

	var parent model.CommentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			if err := tx.First(&parent, "id = ? AND is_active = ?", *parentID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTargetNotFound
				}
				return err
			}
			if parent.ContentType != t.Type || parent.TargetID() != t.ID {
				return ErrParentMismatch
			}
			if parent.ParentID != nil {
				return ErrNestedReply
			}
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return nil, err
	}

	if parentID != nil && parent.UserID != userID && s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, parent.UserID, notifModel.TypeComment,
			"New reply to your comment", preview(c.Text, 140)); err != nil {
			log.Printf("[COMMENT] notify reply failed comment=%s: %v", c.ID, err)
		}
	}
	return &c, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

/* ===================== REACT ===================== */

type ReactionState struct {
	CommentID  uuid.UUID `json:"comment_id"`
	MyReaction string    `json:"my_reaction"`
	Likes      int64     `json:"likes"`
	Dislikes   int64     `json:"dislikes"`
}

// Toggle: kind sama → dihapus, kind lain → diganti. Like dan dislike saling eksklusif.
func (s *CommentService) Toggle(ctx context.Context, userID, commentID uuid.UUID, kind string) (*ReactionState, error) {
	out := &ReactionState{CommentID: commentID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.CommentModel{}).Where("id = ? AND is_active = ?", commentID, true).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrTargetNotFound
		}

		var cur model.CommentReactionModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.CommentReactionModel{CommentID: commentID, UserID: userID, Kind: kind}).Error; err != nil {
				return err
			}
			out.MyReaction = kind
		case err != nil:
			return err
		case cur.Kind == kind:
			if err := tx.Delete(&cur).Error; err != nil {
				return err
			}
		default:
			if err := tx.Model(&cur).Update("kind", kind).Error; err != nil {
				return err
			}
			out.MyReaction = kind
		}

		var counts []reactionCount
		if err := tx.Model(&model.CommentReactionModel{}).
			Select("comment_id, kind, COUNT(*) AS n").
			Where("comment_id = ?", commentID).
			Group("comment_id, kind").
			Scan(&counts).Error; err != nil {
			return err
		}
		for _, rc := range counts {
			if rc.Kind == model.ReactionLike {
				out.Likes = rc.N
			} else {
				out.Dislikes = rc.N
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ===================== DELETE ===================== */

// Delete: pemilik atau admin; balasan dan reaksinya ikut terhapus.
func (s *CommentService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, commentID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.CommentModel
		if err := tx.First(&c, "id = ?", commentID).Error; err != nil {
			return err
		}
		if c.UserID != userID && !isAdmin {
			return ErrNotOwner
		}
		ids := []uuid.UUID{c.ID}
		var replyIDs []uuid.UUID
		if err := tx.Model(&model.CommentModel{}).Where("parent_id = ?", c.ID).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids = append(ids, replyIDs...)
		if err := tx.Where("comment_id IN ?", ids).Delete(&model.CommentReactionModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.CommentModel{}).Error
	})
}
