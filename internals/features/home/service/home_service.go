package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	batchModel "smartstudy_backend/internals/features/batches/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
)

const (
	FeaturedLimit = 6
	SearchLimit   = 10
)

type HomeService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *HomeService {
	return &HomeService{DB: db}
}

type Counts struct {
	Subjects int64 `json:"subjects"`
	Lectures int64 `json:"lectures"`
	Quizzes  int64 `json:"quizzes"`
	Batches  int64 `json:"batches"`
}

type Home struct {
	Counts   Counts                  `json:"counts"`
	Featured []batchModel.BatchModel `json:"featured_batches"`
}

// Index: jumlah konten aktif + batch unggulan (urut sort_order).
func (s *HomeService) Index(ctx context.Context) (*Home, error) {
	db := s.DB.WithContext(ctx)
	out := &Home{Featured: []batchModel.BatchModel{}}

	if err := db.Model(&courseModel.SubjectModel{}).Where("is_active = ?", true).Count(&out.Counts.Subjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&courseModel.CourseLectureModel{}).
		Joins("JOIN chapters ON chapters.id = course_lectures.chapter_id").
		Joins("JOIN subjects ON subjects.id = chapters.subject_id").
		Where("subjects.is_active = ?", true).
		Count(&out.Counts.Lectures).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&quizModel.QuizModel{}).Where("is_active = ?", true).Count(&out.Counts.Quizzes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&batchModel.BatchModel{}).Where("is_active = ?", true).Count(&out.Counts.Batches).Error; err != nil {
		return nil, err
	}
	if err := db.Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Limit(FeaturedLimit).
		Find(&out.Featured).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type SearchResult struct {
	Subjects []courseModel.SubjectModel       `json:"subjects"`
	Lectures []courseModel.CourseLectureModel `json:"lectures"`
	Quizzes  []quizModel.QuizModel            `json:"quizzes"`
	Batches  []batchModel.BatchModel          `json:"batches"`
}

func emptyResult() *SearchResult {
	return &SearchResult{
		Subjects: []courseModel.SubjectModel{},
		Lectures: []courseModel.CourseLectureModel{},
		Quizzes:  []quizModel.QuizModel{},
		Batches:  []batchModel.BatchModel{},
	}
}

// escapeLike: % dan _ dari input user diperlakukan literal.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Search: case-insensitive (LOWER ... LIKE) supaya sama di postgres dan sqlite.
// q kosong → semua list kosong.
func (s *HomeService) Search(ctx context.Context, q string) (*SearchResult, error) {
	out := emptyResult()
	q = strings.TrimSpace(q)
	if q == "" {
		return out, nil
	}
	db := s.DB.WithContext(ctx)
	pat := "%" + escapeLike(strings.ToLower(q)) + "%"

	if err := db.Where("is_active = ?", true).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pat, pat).
		Order("name ASC").Limit(SearchLimit).
		Find(&out.Subjects).Error; err != nil {
		return nil, err
	}
	if err := db.Joins("JOIN chapters ON chapters.id = course_lectures.chapter_id").
		Joins("JOIN subjects ON subjects.id = chapters.subject_id").
		Where("subjects.is_active = ?", true).
		Where(`LOWER(course_lectures.title) LIKE ? ESCAPE '\'`, pat).
		Order("course_lectures.title ASC").Limit(SearchLimit).
		Find(&out.Lectures).Error; err != nil {
		return nil, err
	}
	if err := db.Where("is_active = ?", true).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pat).
		Order("title ASC").Limit(SearchLimit).
		Find(&out.Quizzes).Error; err != nil {
		return nil, err
	}
	if err := db.Where("is_active = ?", true).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pat).
		Order("name ASC").Limit(SearchLimit).
		Find(&out.Batches).Error; err != nil {
		return nil, err
	}
	return out, nil
}
