package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy_backend/internals/constants"
	"smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/assessments/grading"
	"smartstudy_backend/internals/testdb"
)

func seedDPP(t *testing.T, svc *DPPService, tree testdb.BatchTree) (*model.DPPModel, []*model.DPPQuestionModel) {
	t.Helper()
	ctx := context.Background()
	dpp := &model.DPPModel{LectureID: tree.Lecture.ID, Title: "Vectors DPP", IsActive: true}
	require.NoError(t, svc.Create(ctx, dpp))
	assert.Equal(t, model.DefaultTimeLimitMinutes, dpp.TimeLimitMinutes)

	qs := []*model.DPPQuestionModel{
		{
			QuestionType:  grading.QuestionMCQ,
			QuestionText:  "unit vector?",
			Options:       model.EncodeOptions(map[string]string{"A": "i", "B": "j", "C": "k", "D": "0"}),
			CorrectAnswer: "A",
			Marks:         2,
			OrderIndex:    1,
		},
		{QuestionType: grading.QuestionTrueFalse, QuestionText: "|i| = 1", CorrectAnswer: "True", OrderIndex: 2},
		{QuestionType: grading.QuestionNumerical, QuestionText: "3+4", CorrectAnswer: "7", Marks: 3, OrderIndex: 3},
	}
	require.NoError(t, svc.AddQuestions(ctx, dpp.ID, qs))
	return dpp, qs
}

func TestDPPAttemptRequiresEnrollment(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 499)
	dpp, _ := seedDPP(t, svc, tree)

	student := testdb.CreateUser(t, db, constants.RoleStudent)
	_, _, _, err := svc.StartAttempt(ctx, student.ID, constants.RoleStudent, dpp.ID)
	assert.ErrorIs(t, err, grading.ErrNotEnrolled)
	assert.Equal(t, 403, grading.ToFiberError(err).Code)

	// staff tidak perlu enrollment
	teacher := testdb.CreateUser(t, db, constants.RoleTeacher)
	_, _, _, err = svc.StartAttempt(ctx, teacher.ID, constants.RoleTeacher, dpp.ID)
	assert.NoError(t, err)

	testdb.EnrollInBatch(t, db, student.ID, tree.Batch.ID)
	att, qs, resumed, err := svc.StartAttempt(ctx, student.ID, constants.RoleStudent, dpp.ID)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Len(t, qs, 3)
	assert.Equal(t, 6, att.TotalMarks)
}

func TestDPPSubmitGradesByQuestionType(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)
	dpp, qs := seedDPP(t, svc, tree)
	student := testdb.CreateUser(t, db, constants.RoleStudent)
	testdb.EnrollInBatch(t, db, student.ID, tree.Batch.ID)

	att, _, _, err := svc.StartAttempt(ctx, student.ID, constants.RoleStudent, dpp.ID)
	require.NoError(t, err)

	// format salah per tipe ditolak
	_, err = svc.SaveAnswer(ctx, student.ID, att.ID, grading.Response{QuestionID: qs[1].ID, SelectedAnswer: "yes"})
	assert.ErrorIs(t, err, grading.ErrInvalidOption)

	unlocked, err := svc.SolutionUnlocked(ctx, student.ID, constants.RoleStudent, dpp.ID)
	require.NoError(t, err)
	assert.False(t, unlocked)

	done, err := svc.Submit(ctx, student.ID, att.ID, []grading.Response{
		{QuestionID: qs[0].ID, SelectedAnswer: "A"},
		{QuestionID: qs[1].ID, SelectedAnswer: "False"},
		{QuestionID: qs[2].ID, SelectedAnswer: " 7 "},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, done.Score)
	assert.Equal(t, 83.33, done.Percentage)

	_, err = svc.Submit(ctx, student.ID, att.ID, nil)
	assert.ErrorIs(t, err, grading.ErrAttemptCompleted)

	unlocked, err = svc.SolutionUnlocked(ctx, student.ID, constants.RoleStudent, dpp.ID)
	require.NoError(t, err)
	assert.True(t, unlocked)

	_, _, stats, err := svc.MyAttempts(ctx, student.ID, nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Count)
	assert.Equal(t, 5, stats.BestScore)
}

func TestDPPSolutionUpsertKeepsExistingFiles(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)
	dpp, _ := seedDPP(t, svc, tree)

	sol, replaced, err := svc.UpsertSolution(ctx, dpp.ID, model.DPPSolutionModel{SolutionPDF: "https://cdn/a.pdf"})
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.Equal(t, "https://cdn/a.pdf", sol.SolutionPDF)

	sol, replaced, err = svc.UpsertSolution(ctx, dpp.ID, model.DPPSolutionModel{VideoType: "youtube", VideoURL: "https://youtu.be/abcdefghijk"})
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.Equal(t, "https://cdn/a.pdf", sol.SolutionPDF)
	assert.Equal(t, "https://www.youtube.com/embed/abcdefghijk", sol.EmbedURL())

	_, replaced, err = svc.UpsertSolution(ctx, dpp.ID, model.DPPSolutionModel{SolutionPDF: "https://cdn/b.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/a.pdf"}, replaced)

	var n int64
	require.NoError(t, db.Model(&model.DPPSolutionModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDPPOnePerLecture(t *testing.T) {
	db := testdb.New(t)
	svc := New(db)
	tree := testdb.CreateBatchTree(t, db, 0)
	seedDPP(t, svc, tree)

	err := svc.Create(context.Background(), &model.DPPModel{LectureID: tree.Lecture.ID, Title: "dup", IsActive: true})
	require.Error(t, err)
}
