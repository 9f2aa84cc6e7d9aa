package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	batchModel "smartstudy_backend/internals/features/batches/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
	userModel "smartstudy_backend/internals/features/users/user/model"
)

const TestPassword = "password123"

// CreateUser: user aktif dengan password TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, role string) userModel.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	short := uuid.NewString()[:8]
	u := userModel.UserModel{
		UserName:   role + "_" + short,
		Email:      fmt.Sprintf("%s_%s@example.com", role, short),
		Password:   string(hash),
		Role:       role,
		FirstName:  "Test",
		LastName:   role,
		ClassLevel: userModel.ClassLevel11,
		Stream:     userModel.StreamJEE,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func CreateChapter(t *testing.T, db *gorm.DB) (courseModel.SubjectModel, courseModel.ChapterModel) {
	t.Helper()
	short := uuid.NewString()[:8]
	s := courseModel.SubjectModel{
		Name:       "Physics " + short,
		Slug:       "physics-" + short,
		ClassLevel: userModel.ClassLevel11,
		Stream:     userModel.StreamJEE,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&s).Error)
	ch := courseModel.ChapterModel{SubjectID: s.ID, Name: "Kinematics", OrderIndex: 1}
	require.NoError(t, db.Create(&ch).Error)
	return s, ch
}

type BatchTree struct {
	Category batchModel.CategoryModel
	Batch    batchModel.BatchModel
	Subject  batchModel.BatchSubjectModel
	Lecture  batchModel.BatchLectureModel
}

// CreateBatchTree: category → batch (berbayar kalau price > 0) → subject → lecture hari ke-1.
func CreateBatchTree(t *testing.T, db *gorm.DB, price int64) BatchTree {
	t.Helper()
	short := uuid.NewString()[:8]
	cat := batchModel.CategoryModel{Name: "JEE " + short, Slug: "jee-" + short, IsActive: true}
	require.NoError(t, db.Create(&cat).Error)

	b := batchModel.BatchModel{
		CategoryID: cat.ID,
		Name:       "Crash Course " + short,
		Slug:       "crash-course-" + short,
		Price:      decimal.NewFromInt(price),
		IsFree:     price == 0,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&b).Error)

	bs := batchModel.BatchSubjectModel{BatchID: b.ID, Name: "Physics", OrderIndex: 1}
	require.NoError(t, db.Create(&bs).Error)

	lec := batchModel.BatchLectureModel{
		BatchSubjectID: bs.ID,
		TopicName:      "Vectors",
		DayNumber:      1,
		VideoType:      "youtube",
		VideoURL:       "https://youtu.be/dQw4w9WgXcQ",
		IsActive:       true,
	}
	require.NoError(t, db.Create(&lec).Error)
	return BatchTree{Category: cat, Batch: b, Subject: bs, Lecture: lec}
}

func EnrollInBatch(t *testing.T, db *gorm.DB, userID, batchID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&batchModel.BatchEnrollmentModel{UserID: userID, BatchID: batchID, IsActive: true}).Error)
}
