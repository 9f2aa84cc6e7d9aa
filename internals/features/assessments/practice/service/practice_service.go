package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/assessments/practice/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
)

var ErrNoAnswerKey = errors.New("this problem has no answer key")

type PracticeService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *PracticeService {
	return &PracticeService{DB: db}
}

// ListByChapter: terbaru dulu; day != nil → hanya tanggal itu.
func (s *PracticeService) ListByChapter(ctx context.Context, chapterID uuid.UUID, day *time.Time, offset, limit int) ([]model.DailyPracticeProblemModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.DailyPracticeProblemModel{}).Where("chapter_id = ?", chapterID)
	if day != nil {
		q = q.Where("date_assigned >= ? AND date_assigned < ?", *day, day.AddDate(0, 0, 1))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.DailyPracticeProblemModel
	err := q.Order("date_assigned DESC, created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (s *PracticeService) Get(ctx context.Context, id uuid.UUID) (*model.DailyPracticeProblemModel, error) {
	var p model.DailyPracticeProblemModel
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Check membandingkan jawaban bebas: trim + case-insensitive. Tidak disimpan.
func (s *PracticeService) Check(ctx context.Context, id uuid.UUID, answer string) (bool, *model.DailyPracticeProblemModel, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return false, nil, err
	}
	if p.Answer == nil || strings.TrimSpace(*p.Answer) == "" {
		return false, p, ErrNoAnswerKey
	}
	return MatchAnswer(answer, *p.Answer), p, nil
}

func MatchAnswer(given, key string) bool {
	g := strings.TrimSpace(given)
	return g != "" && strings.EqualFold(g, strings.TrimSpace(key))
}

func (s *PracticeService) Create(ctx context.Context, p *model.DailyPracticeProblemModel) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&courseModel.ChapterModel{}).Where("id = ?", p.ChapterID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("chapter: %w", gorm.ErrRecordNotFound)
	}
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *PracticeService) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.DailyPracticeProblemModel, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *PracticeService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&model.DailyPracticeProblemModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
