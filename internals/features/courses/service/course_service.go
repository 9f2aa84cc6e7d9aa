package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartstudy_backend/internals/features/courses/model"
	helper "smartstudy_backend/internals/helpers"
)

type CourseService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *CourseService {
	return &CourseService{DB: db}
}

type SubjectFilter struct {
	ClassLevel string
	Stream     string
	OnlyActive bool
}

/* ===================== SUBJECTS ===================== */

func (s *CourseService) ListSubjects(ctx context.Context, f SubjectFilter, offset, limit int) ([]model.SubjectModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.SubjectModel{})
	if f.ClassLevel != "" {
		q = q.Where("class_level = ?", f.ClassLevel)
	}
	if f.Stream != "" {
		q = q.Where("stream = ?", f.Stream)
	}
	if f.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.SubjectModel
	err := q.Order("class_level ASC, stream ASC, name ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (s *CourseService) GetSubject(ctx context.Context, id uuid.UUID) (*model.SubjectModel, error) {
	var sub model.SubjectModel
	if err := s.DB.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

type ChapterTree struct {
	model.ChapterModel
	Lectures []model.CourseLectureModel `json:"lectures"`
}

// SubjectTree: chapter urut order_index, lecture per chapter urut order_index.
func (s *CourseService) SubjectTree(ctx context.Context, subjectID uuid.UUID) ([]ChapterTree, error) {
	db := s.DB.WithContext(ctx)
	var chapters []model.ChapterModel
	if err := db.Where("subject_id = ?", subjectID).Order("order_index ASC").Find(&chapters).Error; err != nil {
		return nil, err
	}
	out := make([]ChapterTree, 0, len(chapters))
	if len(chapters) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(chapters))
	for _, ch := range chapters {
		ids = append(ids, ch.ID)
	}
	var lectures []model.CourseLectureModel
	if err := db.Where("chapter_id IN ?", ids).Order("order_index ASC").Find(&lectures).Error; err != nil {
		return nil, err
	}
	byChapter := map[uuid.UUID][]model.CourseLectureModel{}
	for _, l := range lectures {
		byChapter[l.ChapterID] = append(byChapter[l.ChapterID], l)
	}
	for _, ch := range chapters {
		ls := byChapter[ch.ID]
		if ls == nil {
			ls = []model.CourseLectureModel{}
		}
		out = append(out, ChapterTree{ChapterModel: ch, Lectures: ls})
	}
	return out, nil
}

func (s *CourseService) CreateSubject(ctx context.Context, sub *model.SubjectModel) error {
	base := helper.Slugify(sub.Name+" "+sub.ClassLevel+" "+sub.Stream, 100)
	slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "subjects", "slug", base, nil, 100)
	if err != nil {
		return err
	}
	sub.Slug = slug
	return s.DB.WithContext(ctx).Create(sub).Error
}

func (s *CourseService) UpdateSubject(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.SubjectModel, error) {
	sub, err := s.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(sub).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetSubject(ctx, id)
}

// DeleteSubject: chapter/lecture/pdf ikut terhapus; URL pdf dikembalikan untuk di-trash.
func (s *CourseService) DeleteSubject(ctx context.Context, id uuid.UUID) ([]string, error) {
	var files []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chapterIDs := tx.Model(&model.ChapterModel{}).Select("id").Where("subject_id = ?", id)
		lectureIDs := tx.Session(&gorm.Session{NewDB: true}).Model(&model.CourseLectureModel{}).Select("id").Where("chapter_id IN (?)", chapterIDs)
		var err error
		files, err = deleteLectureTree(tx, lectureIDs)
		if err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&model.ChapterModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.SubjectModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return files, err
}

/* ===================== CHAPTERS ===================== */

func (s *CourseService) GetChapter(ctx context.Context, id uuid.UUID) (*model.ChapterModel, error) {
	var ch model.ChapterModel
	if err := s.DB.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *CourseService) CreateChapter(ctx context.Context, ch *model.ChapterModel) error {
	if _, err := s.GetSubject(ctx, ch.SubjectID); err != nil {
		return fmt.Errorf("subject: %w", err)
	}
	return s.DB.WithContext(ctx).Create(ch).Error
}

func (s *CourseService) UpdateChapter(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.ChapterModel, error) {
	ch, err := s.GetChapter(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(ch).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetChapter(ctx, id)
}

func (s *CourseService) DeleteChapter(ctx context.Context, id uuid.UUID) ([]string, error) {
	var files []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lectureIDs := tx.Model(&model.CourseLectureModel{}).Select("id").Where("chapter_id = ?", id)
		var err error
		files, err = deleteLectureTree(tx, lectureIDs)
		if err != nil {
			return err
		}
		res := tx.Delete(&model.ChapterModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return files, err
}

/* ===================== LECTURES ===================== */

func (s *CourseService) GetLecture(ctx context.Context, id uuid.UUID) (*model.CourseLectureModel, error) {
	var l model.CourseLectureModel
	if err := s.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *CourseService) LecturePDFs(ctx context.Context, lectureID uuid.UUID) ([]model.LecturePDFModel, error) {
	var rows []model.LecturePDFModel
	err := s.DB.WithContext(ctx).Where("lecture_id = ?", lectureID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// SubjectOfLecture: lecture → chapter → subject (untuk cek akses paket).
func (s *CourseService) SubjectOfLecture(ctx context.Context, lectureID uuid.UUID) (*model.SubjectModel, error) {
	var sub model.SubjectModel
	err := s.DB.WithContext(ctx).
		Joins("JOIN chapters ON chapters.subject_id = subjects.id").
		Joins("JOIN course_lectures ON course_lectures.chapter_id = chapters.id").
		Where("course_lectures.id = ?", lectureID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *CourseService) CreateLecture(ctx context.Context, l *model.CourseLectureModel) error {
	if _, err := s.GetChapter(ctx, l.ChapterID); err != nil {
		return fmt.Errorf("chapter: %w", err)
	}
	return s.DB.WithContext(ctx).Create(l).Error
}

func (s *CourseService) UpdateLecture(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.CourseLectureModel, error) {
	l, err := s.GetLecture(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(l).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetLecture(ctx, id)
}

func (s *CourseService) DeleteLecture(ctx context.Context, id uuid.UUID) ([]string, error) {
	var files []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.CourseLectureModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		var err error
		files, err = deleteLectureTree(tx, []uuid.UUID{id})
		return err
	})
	return files, err
}

/* ===================== PDFS ===================== */

func (s *CourseService) AddPDF(ctx context.Context, pdf *model.LecturePDFModel) error {
	if _, err := s.GetLecture(ctx, pdf.LectureID); err != nil {
		return fmt.Errorf("lecture: %w", err)
	}
	return s.DB.WithContext(ctx).Create(pdf).Error
}

func (s *CourseService) DeletePDF(ctx context.Context, lectureID, pdfID uuid.UUID) (*model.LecturePDFModel, error) {
	var pdf model.LecturePDFModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pdf, "id = ? AND lecture_id = ?", pdfID, lectureID).Error; err != nil {
			return err
		}
		return tx.Delete(&pdf).Error
	})
	if err != nil {
		return nil, err
	}
	return &pdf, nil
}

// deleteLectureTree: hapus progress, pdf, lalu lecture. lectureIDs boleh subquery atau slice.
func deleteLectureTree(tx *gorm.DB, lectureIDs any) ([]string, error) {
	var urls []string
	if err := tx.Model(&model.LecturePDFModel{}).Where("lecture_id IN (?)", lectureIDs).Pluck("file_url", &urls).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("lecture_id IN (?)", lectureIDs).Delete(&model.LecturePDFModel{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("lecture_id IN (?)", lectureIDs).Delete(&model.LectureProgressModel{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN (?)", lectureIDs).Delete(&model.CourseLectureModel{}).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
