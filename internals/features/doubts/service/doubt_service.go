package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartstudy_backend/internals/constants"
	batchModel "smartstudy_backend/internals/features/batches/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
	"smartstudy_backend/internals/features/doubts/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
)

var (
	ErrDoubtNotFound     = errors.New("doubt not found")
	ErrInvalidTransition = errors.New("doubt status does not allow this action")
	ErrNotEditable       = errors.New("doubt can only be changed while submitted")
	ErrAssignedToOther   = errors.New("doubt is assigned to another teacher")
	ErrRoleNotAllowed    = errors.New("role cannot access doubts")
)

var nowFunc = func() time.Time { return time.Now().UTC() }

type DoubtService struct {
	DB       *gorm.DB
	Notifier notifService.Notifier
}

func New(db *gorm.DB, n notifService.Notifier) *DoubtService {
	return &DoubtService{DB: db, Notifier: n}
}

type Viewer struct {
	ID   uuid.UUID
	Role string
}

// scope: siswa → miliknya, teacher → belum di-assign atau milik dia, admin → semua.
func scope(q *gorm.DB, v Viewer) (*gorm.DB, error) {
	switch v.Role {
	case constants.RoleAdmin:
		return q, nil
	case constants.RoleTeacher:
		return q.Where("(assigned_to IS NULL OR assigned_to = ?)", v.ID), nil
	case constants.RoleStudent:
		return q.Where("student_id = ?", v.ID), nil
	}
	return nil, ErrRoleNotAllowed
}

func (s *DoubtService) Create(ctx context.Context, d *model.DoubtModel) error {
	db := s.DB.WithContext(ctx)
	if d.SubjectID != nil {
		if err := db.Select("id").First(&courseModel.SubjectModel{}, "id = ?", *d.SubjectID).Error; err != nil {
			return fmt.Errorf("subject: %w", err)
		}
	}
	if d.BatchSubjectID != nil {
		if err := db.Select("id").First(&batchModel.BatchSubjectModel{}, "id = ?", *d.BatchSubjectID).Error; err != nil {
			return fmt.Errorf("batch subject: %w", err)
		}
	}
	d.Status = model.StatusSubmitted
	return db.Create(d).Error
}

func (s *DoubtService) List(ctx context.Context, v Viewer, status string, offset, limit int) ([]model.DoubtModel, int64, error) {
	q, err := scope(s.DB.WithContext(ctx).Model(&model.DoubtModel{}), v)
	if err != nil {
		return nil, 0, err
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.DoubtModel
	err = q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

// Get: doubt di luar scope viewer dianggap tidak ada.
func (s *DoubtService) Get(ctx context.Context, v Viewer, id uuid.UUID) (*model.DoubtModel, error) {
	q, err := scope(s.DB.WithContext(ctx).Model(&model.DoubtModel{}), v)
	if err != nil {
		return nil, err
	}
	var d model.DoubtModel
	if err := q.Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoubtNotFound
		}
		return nil, err
	}
	return &d, nil
}

func lockDoubt(tx *gorm.DB, id uuid.UUID) (*model.DoubtModel, error) {
	var d model.DoubtModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoubtNotFound
	}
	return &d, err
}

// Assign: teacher mengambil doubt (submitted → in_progress).
func (s *DoubtService) Assign(ctx context.Context, teacherID, id uuid.UUID) (*model.DoubtModel, error) {
	var out *model.DoubtModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := lockDoubt(tx, id)
		if err != nil {
			return err
		}
		if !model.CanTransition(d.Status, model.StatusInProgress) {
			return ErrInvalidTransition
		}
		res := tx.Model(&model.DoubtModel{}).
			Where("id = ? AND status = ?", id, model.StatusSubmitted).
			Updates(map[string]any{"assigned_to": teacherID, "status": model.StatusInProgress})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		out, err = lockDoubt(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve: in_progress/submitted → resolved, lalu notifikasi ke siswa.
// Teacher hanya boleh resolve doubt yang belum di-assign atau miliknya; admin bebas.
func (s *DoubtService) Resolve(ctx context.Context, v Viewer, id uuid.UUID, resolution string) (*model.DoubtModel, error) {
	var out *model.DoubtModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := lockDoubt(tx, id)
		if err != nil {
			return err
		}
		if !model.CanTransition(d.Status, model.StatusResolved) {
			return ErrInvalidTransition
		}
		if v.Role != constants.RoleAdmin && d.AssignedTo != nil && *d.AssignedTo != v.ID {
			return ErrAssignedToOther
		}
		now := nowFunc()
		updates := map[string]any{
			"status":      model.StatusResolved,
			"resolution":  resolution,
			"resolved_by": v.ID,
			"resolved_at": now,
		}
		if d.AssignedTo == nil {
			updates["assigned_to"] = v.ID
		}
		res := tx.Model(&model.DoubtModel{}).Where("id = ? AND status <> ?", id, model.StatusResolved).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		out, err = lockDoubt(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		msg := fmt.Sprintf("Your doubt %q has been resolved.", out.Title)
		if err := s.Notifier.Notify(ctx, out.StudentID, notifModel.TypeDoubt, "Doubt resolved", msg); err != nil {
			log.Printf("[DOUBT] notify resolve failed doubt=%s: %v", out.ID, err)
		}
	}
	return out, nil
}

// Update: hanya pemilik dan selama masih submitted. Mengembalikan image lama kalau diganti.
func (s *DoubtService) Update(ctx context.Context, studentID, id uuid.UUID, updates map[string]any) (*model.DoubtModel, string, error) {
	var (
		out      *model.DoubtModel
		replaced string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := lockDoubt(tx, id)
		if err != nil {
			return err
		}
		if d.StudentID != studentID {
			return ErrDoubtNotFound
		}
		if d.Status != model.StatusSubmitted {
			return ErrNotEditable
		}
		if img, ok := updates["image_url"].(string); ok && d.ImageURL != "" && img != d.ImageURL {
			replaced = d.ImageURL
		}
		if len(updates) > 0 {
			if err := tx.Model(d).Updates(updates).Error; err != nil {
				return err
			}
		}
		out, err = lockDoubt(tx, id)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return out, replaced, nil
}

// Delete: siswa menarik doubt yang masih submitted; image dikembalikan untuk di-trash.
func (s *DoubtService) Delete(ctx context.Context, studentID, id uuid.UUID) (string, error) {
	var img string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := lockDoubt(tx, id)
		if err != nil {
			return err
		}
		if d.StudentID != studentID {
			return ErrDoubtNotFound
		}
		if d.Status != model.StatusSubmitted {
			return ErrNotEditable
		}
		img = d.ImageURL
		return tx.Delete(d).Error
	})
	return img, err
}

type StatusCounts struct {
	Total      int64 `json:"total"`
	Submitted  int64 `json:"submitted"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
}

// Counts per status dalam scope viewer (dipakai dashboard).
func (s *DoubtService) Counts(ctx context.Context, v Viewer) (*StatusCounts, error) {
	q, err := scope(s.DB.WithContext(ctx).Model(&model.DoubtModel{}), v)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string
		N      int64
	}
	if err := q.Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := &StatusCounts{}
	for _, r := range rows {
		out.Total += r.N
		switch r.Status {
		case model.StatusSubmitted:
			out.Submitted = r.N
		case model.StatusInProgress:
			out.InProgress = r.N
		case model.StatusResolved:
			out.Resolved = r.N
		}
	}
	return out, nil
}
