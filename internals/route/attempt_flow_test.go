package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	dppService "smartstudy_backend/internals/features/assessments/dpps/service"
	"smartstudy_backend/internals/features/assessments/grading"
	quizModel "smartstudy_backend/internals/features/assessments/quizzes/model"
	quizService "smartstudy_backend/internals/features/assessments/quizzes/service"
	userModel "smartstudy_backend/internals/features/users/user/model"
	"smartstudy_backend/internals/testdb"
)

type attemptFlow struct {
	name        string
	startPath   string
	attemptBase string
	// jawaban per soal (urut order_index): 1 benar dari 3
	answers   []string
	badOption string
}

func seedQuizFlow(t *testing.T, db *gorm.DB) attemptFlow {
	t.Helper()
	ctx := context.Background()
	svc := quizService.New(db)
	_, ch := testdb.CreateChapter(t, db)
	quiz := quizModel.QuizModel{ChapterID: ch.ID, Title: "Units and dimensions", IsActive: true}
	require.NoError(t, svc.Create(ctx, &quiz))
	opts := quizModel.EncodeOptions(map[string]string{"A": "m", "B": "kg", "C": "s", "D": "K"})
	require.NoError(t, svc.AddQuestions(ctx, quiz.ID, []*quizModel.QuizQuestionModel{
		{QuestionText: "unit of length", Options: opts, CorrectAnswer: "A", Marks: 1, OrderIndex: 1},
		{QuestionText: "unit of mass", Options: opts, CorrectAnswer: "B", Marks: 1, OrderIndex: 2},
		{QuestionText: "unit of time", Options: opts, CorrectAnswer: "C", Marks: 1, OrderIndex: 3},
	}))
	return attemptFlow{
		name:        "quiz",
		startPath:   "/api/u/quizzes/" + quiz.ID.String() + "/attempts",
		attemptBase: "/api/u/quiz-attempts/",
		answers:     []string{"A", "D", ""},
		badOption:   "E",
	}
}

func seedDPPFlow(t *testing.T, db *gorm.DB, studentID uuid.UUID) attemptFlow {
	t.Helper()
	ctx := context.Background()
	svc := dppService.New(db)
	tree := testdb.CreateBatchTree(t, db, 999)
	testdb.EnrollInBatch(t, db, studentID, tree.Batch.ID)

	dpp := &dppModel.DPPModel{LectureID: tree.Lecture.ID, Title: "Day 1 DPP", IsActive: true}
	require.NoError(t, svc.Create(ctx, dpp))
	require.NoError(t, svc.AddQuestions(ctx, dpp.ID, []*dppModel.DPPQuestionModel{
		{
			QuestionType:  grading.QuestionMCQ,
			QuestionText:  "SI unit of force",
			Options:       dppModel.EncodeOptions(map[string]string{"A": "N", "B": "J", "C": "W", "D": "Pa"}),
			CorrectAnswer: "A",
			Marks:         1,
			OrderIndex:    1,
		},
		{QuestionType: grading.QuestionTrueFalse, QuestionText: "g is constant everywhere", CorrectAnswer: "False", Marks: 1, OrderIndex: 2},
		{QuestionType: grading.QuestionNumerical, QuestionText: "2 x 3.5", CorrectAnswer: "7", Marks: 1, OrderIndex: 3},
	}))
	return attemptFlow{
		name:        "dpp",
		startPath:   "/api/u/dpps/" + dpp.ID.String() + "/attempts",
		attemptBase: "/api/u/dpp-attempts/",
		answers:     []string{"A", "True", "8"},
		badOption:   "E",
	}
}

func TestAttemptFlowOverHTTP(t *testing.T) {
	app, db := newTestApp(t)
	token := registerAndLogin(t, app, "meera")

	var student userModel.UserModel
	require.NoError(t, db.Where("user_name = ?", "meera").First(&student).Error)

	flows := []attemptFlow{seedQuizFlow(t, db), seedDPPFlow(t, db, student.ID)}

	for _, f := range flows {
		t.Run(f.name, func(t *testing.T) {
			status, env := do(t, app, http.MethodPost, f.startPath, token, nil)
			require.Equal(t, http.StatusCreated, status, env.Message)
			assert.NotContains(t, string(env.Data), "correct_answer")

			var started struct {
				Attempt struct {
					ID         uuid.UUID `json:"id"`
					TotalMarks int       `json:"total_marks"`
				} `json:"attempt"`
				Questions []struct {
					ID uuid.UUID `json:"id"`
				} `json:"questions"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &started))
			require.Len(t, started.Questions, len(f.answers))
			assert.Equal(t, 3, started.Attempt.TotalMarks)
			attemptPath := f.attemptBase + started.Attempt.ID.String()

			// attempt terbuka dilanjutkan, bukan dibuat ulang
			status, env = do(t, app, http.MethodPost, f.startPath, token, nil)
			require.Equal(t, http.StatusOK, status)
			assert.NotContains(t, string(env.Data), "correct_answer")

			status, env = do(t, app, http.MethodGet, attemptPath, token, nil)
			require.Equal(t, http.StatusOK, status)
			assert.NotContains(t, string(env.Data), "correct_answer")

			answers := make([]fiber.Map, 0, len(f.answers))
			for i, q := range started.Questions {
				answers = append(answers, fiber.Map{"question_id": q.ID, "selected_answer": f.answers[i]})
			}

			cases := []struct {
				name string
				body fiber.Map
				want int
			}{
				{"bad option", fiber.Map{"answers": []fiber.Map{{"question_id": started.Questions[0].ID, "selected_answer": f.badOption}}}, http.StatusUnprocessableEntity},
				{"unknown question", fiber.Map{"answers": []fiber.Map{{"question_id": uuid.New(), "selected_answer": "A"}}}, http.StatusBadRequest},
				{"submit", fiber.Map{"answers": answers}, http.StatusOK},
				{"resubmit", fiber.Map{"answers": answers}, http.StatusConflict},
			}
			for _, tc := range cases {
				status, env = do(t, app, http.MethodPost, attemptPath+"/submit", token, tc.body)
				require.Equal(t, tc.want, status, tc.name)
				if tc.name != "submit" {
					continue
				}
				var done struct {
					Score       int     `json:"score"`
					TotalMarks  int     `json:"total_marks"`
					Percentage  float64 `json:"percentage"`
					CompletedAt *string `json:"completed_at"`
				}
				require.NoError(t, json.Unmarshal(env.Data, &done))
				assert.Equal(t, 1, done.Score)
				assert.Equal(t, 3, done.TotalMarks)
				assert.Equal(t, 33.33, done.Percentage)
				assert.NotNil(t, done.CompletedAt)
			}

			// setelah selesai kunci jawaban boleh tampil
			status, env = do(t, app, http.MethodGet, attemptPath, token, nil)
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, string(env.Data), "correct_answer")
		})
	}

	t.Run("another student cannot see the attempt", func(t *testing.T) {
		other := registerAndLogin(t, app, "kabir")
		status, _ := do(t, app, http.MethodGet, "/api/u/quiz-attempts/"+uuid.NewString(), other, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
