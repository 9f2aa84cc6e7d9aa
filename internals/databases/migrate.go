package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	practiceModel "smartstudy_backend/internals/features/assessments/practice/model"
	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	batchModel "smartstudy_backend/internals/features/batches/model"
	orderModel "smartstudy_backend/internals/features/commerce/orders/model"
	referralModel "smartstudy_backend/internals/features/commerce/referrals/model"
	commentModel "smartstudy_backend/internals/features/comments/model"
	courseModel "smartstudy_backend/internals/features/courses/model"
	doubtModel "smartstudy_backend/internals/features/doubts/model"
	authModel "smartstudy_backend/internals/features/users/auth/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	userModel "smartstudy_backend/internals/features/users/user/model"

	"smartstudy_backend/internals/constants"
)

// Models: urutan mengikuti dependensi (identity → konten → assessment → commerce)
func Models() []any {
	return []any{
		&userModel.RoleModel{},
		&userModel.UserModel{},
		&authModel.RefreshTokenModel{},
		&authModel.TokenBlacklist{},
		&notifModel.NotificationModel{},

		&courseModel.SubjectModel{},
		&courseModel.ChapterModel{},
		&courseModel.CourseLectureModel{},
		&courseModel.LecturePDFModel{},
		&courseModel.LectureProgressModel{},
		&courseModel.EnrollmentModel{},

		&batchModel.CategoryModel{},
		&batchModel.BatchModel{},
		&batchModel.BatchSubjectModel{},
		&batchModel.BatchLectureModel{},
		&batchModel.BatchEnrollmentModel{},

		&quizModel.QuizModel{},
		&quizModel.QuizQuestionModel{},
		&quizModel.QuizAttemptModel{},
		&quizModel.QuizAnswerModel{},
		&practiceModel.DailyPracticeProblemModel{},

		&dppModel.DPPModel{},
		&dppModel.DPPQuestionModel{},
		&dppModel.DPPSolutionModel{},
		&dppModel.DPPAttemptModel{},
		&dppModel.DPPAnswerModel{},

		&commentModel.CommentModel{},
		&commentModel.CommentReactionModel{},
		&doubtModel.DoubtModel{},

		&referralModel.SalesExecutiveModel{},
		&referralModel.ReferralCodeModel{},
		&orderModel.OrderModel{},
	}
}

// Migrate: AutoMigrate semua model lalu isi tabel roles.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedRoles(db)
}

var roleDescriptions = map[string]string{
	constants.RoleAdmin:          "Full access",
	constants.RoleTeacher:        "Manages content and answers doubts",
	constants.RoleStudent:        "Learner",
	constants.RoleSalesExecutive: "Owns referral codes",
}

func SeedRoles(db *gorm.DB) error {
	for _, name := range constants.AllRoles {
		r := userModel.RoleModel{Name: name, Description: roleDescriptions[name]}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&r).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	log.Println("[SEED] roles ready")
	return nil
}
