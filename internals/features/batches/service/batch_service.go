package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/batches/model"
	batchRepo "smartstudy_backend/internals/features/batches/repository"
	commentModel "smartstudy_backend/internals/features/comments/model"
	helper "smartstudy_backend/internals/helpers"
)

var (
	ErrPaidBatch         = errors.New("batch is paid, use checkout")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this batch")
	ErrNotEnrolled       = errors.New("enroll in this batch to access its lectures")
	ErrCategoryNotEmpty  = errors.New("category still has batches")
	ErrBatchHasStudents  = errors.New("batch has enrolled students, deactivate it instead")
	ErrLectureHasDPP     = errors.New("lecture has a dpp, delete the dpp first")
	ErrBatchNotAvailable = errors.New("batch not found")
)

const slugMax = 120

type BatchService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *BatchService {
	return &BatchService{DB: db}
}

/* ===================== CATEGORIES ===================== */

type CategoryWithBatches struct {
	model.CategoryModel
	Batches []model.BatchModel `json:"batches"`
}

// Categories: kategori aktif + batch aktif di dalamnya (urut order, name).
func (s *BatchService) Categories(ctx context.Context, onlyActive bool) ([]CategoryWithBatches, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&model.CategoryModel{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var cats []model.CategoryModel
	if err := q.Order("sort_order ASC, name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	out := make([]CategoryWithBatches, 0, len(cats))
	if len(cats) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	bq := db.Where("category_id IN ?", ids)
	if onlyActive {
		bq = bq.Where("is_active = ?", true)
	}
	var batches []model.BatchModel
	if err := bq.Order("sort_order ASC, name ASC").Find(&batches).Error; err != nil {
		return nil, err
	}
	byCat := map[uuid.UUID][]model.BatchModel{}
	for _, b := range batches {
		byCat[b.CategoryID] = append(byCat[b.CategoryID], b)
	}
	for _, c := range cats {
		bs := byCat[c.ID]
		if bs == nil {
			bs = []model.BatchModel{}
		}
		out = append(out, CategoryWithBatches{CategoryModel: c, Batches: bs})
	}
	return out, nil
}

func (s *BatchService) CreateCategory(ctx context.Context, c *model.CategoryModel) error {
	slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "categories", "slug", helper.Slugify(c.Name, slugMax), nil, slugMax)
	if err != nil {
		return err
	}
	c.Slug = slug
	return s.DB.WithContext(ctx).Create(c).Error
}

func (s *BatchService) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.CategoryModel, error) {
	var c model.CategoryModel
	db := s.DB.WithContext(ctx)
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if name, ok := updates["name"].(string); ok && name != c.Name {
		slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "categories", "slug", helper.Slugify(name, slugMax), id, slugMax)
		if err != nil {
			return nil, err
		}
		updates["slug"] = slug
	}
	if len(updates) > 0 {
		if err := db.Model(&c).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *BatchService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.BatchModel{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrCategoryNotEmpty
		}
		res := tx.Delete(&model.CategoryModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

/* ===================== BATCHES ===================== */

type BatchFilter struct {
	CategorySlug string
	OnlyActive   bool
}

func (s *BatchService) ListBatches(ctx context.Context, f BatchFilter, offset, limit int) ([]model.BatchModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.BatchModel{})
	if f.CategorySlug != "" {
		sub := s.DB.Session(&gorm.Session{NewDB: true}).Model(&model.CategoryModel{}).Select("id").Where("slug = ?", f.CategorySlug)
		q = q.Where("category_id IN (?)", sub)
	}
	if f.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.BatchModel
	err := q.Order("sort_order ASC, created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (s *BatchService) GetBatch(ctx context.Context, id uuid.UUID) (*model.BatchModel, error) {
	var b model.BatchModel
	if err := s.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

type SubjectTree struct {
	model.BatchSubjectModel
	Lectures []model.BatchLectureModel `json:"lectures"`
}

// Tree: subject urut order_index, lecture urut day_number.
func (s *BatchService) Tree(ctx context.Context, batchID uuid.UUID, onlyActive bool) ([]SubjectTree, error) {
	db := s.DB.WithContext(ctx)
	var subjects []model.BatchSubjectModel
	if err := db.Where("batch_id = ?", batchID).Order("order_index ASC, name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	out := make([]SubjectTree, 0, len(subjects))
	if len(subjects) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(subjects))
	for _, sub := range subjects {
		ids = append(ids, sub.ID)
	}
	lq := db.Where("batch_subject_id IN ?", ids)
	if onlyActive {
		lq = lq.Where("is_active = ?", true)
	}
	var lectures []model.BatchLectureModel
	if err := lq.Order("day_number ASC").Find(&lectures).Error; err != nil {
		return nil, err
	}
	bySub := map[uuid.UUID][]model.BatchLectureModel{}
	for _, l := range lectures {
		bySub[l.BatchSubjectID] = append(bySub[l.BatchSubjectID], l)
	}
	for _, sub := range subjects {
		ls := bySub[sub.ID]
		if ls == nil {
			ls = []model.BatchLectureModel{}
		}
		out = append(out, SubjectTree{BatchSubjectModel: sub, Lectures: ls})
	}
	return out, nil
}

func (s *BatchService) EnrolledCount(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return batchRepo.EnrolledCount(ctx, s.DB, batchID)
}

func (s *BatchService) IsEnrolled(ctx context.Context, userID, batchID uuid.UUID) (bool, error) {
	return batchRepo.IsEnrolledInBatch(ctx, s.DB, userID, batchID)
}

// EnrollFree: hanya batch gratis; batch berbayar lewat checkout order.
func (s *BatchService) EnrollFree(ctx context.Context, userID, batchID uuid.UUID) error {
	b, err := s.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBatchNotAvailable
		}
		return err
	}
	if !b.IsActive {
		return ErrBatchNotAvailable
	}
	if !b.IsFree {
		return ErrPaidBatch
	}
	ok, err := s.IsEnrolled(ctx, userID, batchID)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyEnrolled
	}
	return batchRepo.Enroll(s.DB.WithContext(ctx), userID, batchID)
}

func (s *BatchService) MyBatches(ctx context.Context, userID uuid.UUID) ([]model.BatchModel, error) {
	var rows []model.BatchModel
	err := s.DB.WithContext(ctx).
		Joins("JOIN batch_enrollments be ON be.batch_id = batches.id").
		Where("be.user_id = ? AND be.is_active = ?", userID, true).
		Order("be.enrolled_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *BatchService) CreateBatch(ctx context.Context, b *model.BatchModel) error {
	var cat model.CategoryModel
	if err := s.DB.WithContext(ctx).First(&cat, "id = ?", b.CategoryID).Error; err != nil {
		return fmt.Errorf("category: %w", err)
	}
	slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "batches", "slug", helper.Slugify(b.Name, slugMax), nil, slugMax)
	if err != nil {
		return err
	}
	b.Slug = slug
	return s.DB.WithContext(ctx).Create(b).Error
}

// UpdateBatch mengembalikan thumbnail lama kalau diganti (untuk di-trash).
func (s *BatchService) UpdateBatch(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.BatchModel, string, error) {
	b, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, "", err
	}
	replaced := ""
	if thumb, ok := updates["thumbnail"].(string); ok && b.Thumbnail != "" && thumb != b.Thumbnail {
		replaced = b.Thumbnail
	}
	if name, ok := updates["name"].(string); ok && name != b.Name {
		slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "batches", "slug", helper.Slugify(name, slugMax), id, slugMax)
		if err != nil {
			return nil, "", err
		}
		updates["slug"] = slug
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(b).Updates(updates).Error; err != nil {
			return nil, "", err
		}
	}
	b, err = s.GetBatch(ctx, id)
	return b, replaced, err
}

// DeleteBatch: ditolak kalau sudah ada siswa; file OSS dikembalikan.
func (s *BatchService) DeleteBatch(ctx context.Context, id uuid.UUID) ([]string, error) {
	var files []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.BatchModel
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.BatchEnrollmentModel{}).Where("batch_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrBatchHasStudents
		}
		subIDs := tx.Session(&gorm.Session{NewDB: true}).Model(&model.BatchSubjectModel{}).Select("id").Where("batch_id = ?", id)
		lecFiles, err := deleteLectures(tx, "batch_subject_id IN (?)", subIDs)
		if err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", id).Delete(&model.BatchSubjectModel{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&b).Error; err != nil {
			return err
		}
		files = append(lecFiles, b.Thumbnail)
		return nil
	})
	return files, err
}

/* ===================== SUBJECTS ===================== */

func (s *BatchService) CreateSubject(ctx context.Context, sub *model.BatchSubjectModel) error {
	if _, err := s.GetBatch(ctx, sub.BatchID); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return s.DB.WithContext(ctx).Create(sub).Error
}

func (s *BatchService) UpdateSubject(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.BatchSubjectModel, error) {
	var sub model.BatchSubjectModel
	db := s.DB.WithContext(ctx)
	if err := db.First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(&sub).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := db.First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *BatchService) DeleteSubject(ctx context.Context, id uuid.UUID) ([]string, error) {
	var files []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		files, err = deleteLectures(tx, "batch_subject_id = ?", id)
		if err != nil {
			return err
		}
		res := tx.Delete(&model.BatchSubjectModel{}, "id = ?", id)
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

func (s *BatchService) GetLecture(ctx context.Context, id uuid.UUID) (*model.BatchLectureModel, error) {
	var l model.BatchLectureModel
	if err := s.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CanAccessLecture: staff, atau enrollment aktif di batch pemilik lecture.
func (s *BatchService) CanAccessLecture(ctx context.Context, userID uuid.UUID, staff bool, lectureID uuid.UUID) (bool, error) {
	if staff {
		return true, nil
	}
	return batchRepo.IsEnrolledForLecture(ctx, s.DB, userID, lectureID)
}

type LectureExtras struct {
	DPP          *dppModel.DPPModel `json:"dpp,omitempty"`
	CommentCount int64              `json:"comment_count"`
}

// Extras: DPP lecture (yang aktif saja kalau bukan staff) + jumlah komentar top-level.
func (s *BatchService) Extras(ctx context.Context, lectureID uuid.UUID, staff bool) (*LectureExtras, error) {
	db := s.DB.WithContext(ctx)
	out := &LectureExtras{}
	var d dppModel.DPPModel
	q := db.Where("lecture_id = ?", lectureID)
	if !staff {
		q = q.Where("is_active = ?", true)
	}
	err := q.First(&d).Error
	switch {
	case err == nil:
		out.DPP = &d
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if err := db.Model(&commentModel.CommentModel{}).
		Where("lecture_id = ? AND content_type = ? AND is_active = ?", lectureID, commentModel.TargetLecture, true).
		Count(&out.CommentCount).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BatchService) CreateLecture(ctx context.Context, l *model.BatchLectureModel) error {
	var sub model.BatchSubjectModel
	if err := s.DB.WithContext(ctx).First(&sub, "id = ?", l.BatchSubjectID).Error; err != nil {
		return fmt.Errorf("batch subject: %w", err)
	}
	return s.DB.WithContext(ctx).Create(l).Error
}

// UpdateLecture mengembalikan URL file yang tergantikan.
func (s *BatchService) UpdateLecture(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.BatchLectureModel, []string, error) {
	l, err := s.GetLecture(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var replaced []string
	if v, ok := updates["pdf_file"].(string); ok && l.PDFFile != "" && v != l.PDFFile {
		replaced = append(replaced, l.PDFFile)
	}
	if v, ok := updates["video_file"].(string); ok && l.VideoFile != "" && v != l.VideoFile {
		replaced = append(replaced, l.VideoFile)
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(l).Updates(updates).Error; err != nil {
			return nil, nil, err
		}
	}
	l, err = s.GetLecture(ctx, id)
	return l, replaced, err
}

func (s *BatchService) DeleteLecture(ctx context.Context, id uuid.UUID) ([]string, error) {
	var files []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := (&BatchService{DB: tx}).GetLecture(ctx, id); err != nil {
			return err
		}
		var err error
		files, err = deleteLectures(tx, "id = ?", id)
		return err
	})
	return files, err
}

// deleteLectures: lecture dengan DPP ditolak; komentar lecture ikut dihapus.
func deleteLectures(tx *gorm.DB, where string, args ...any) ([]string, error) {
	var lectures []model.BatchLectureModel
	if err := tx.Where(where, args...).Find(&lectures).Error; err != nil {
		return nil, err
	}
	if len(lectures) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(lectures))
	var files []string
	for _, l := range lectures {
		ids = append(ids, l.ID)
		if l.PDFFile != "" {
			files = append(files, l.PDFFile)
		}
		if l.VideoFile != "" {
			files = append(files, l.VideoFile)
		}
	}
	var n int64
	if err := tx.Model(&dppModel.DPPModel{}).Where("lecture_id IN ?", ids).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrLectureHasDPP
	}
	commentIDs := tx.Session(&gorm.Session{NewDB: true}).Model(&commentModel.CommentModel{}).Select("id").Where("lecture_id IN ?", ids)
	if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&commentModel.CommentReactionModel{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("lecture_id IN ?", ids).Delete(&commentModel.CommentModel{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", ids).Delete(&model.BatchLectureModel{}).Error; err != nil {
		return nil, err
	}
	return files, nil
}
