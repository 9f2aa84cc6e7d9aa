package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartstudy_backend/internals/constants"
	dppModel "smartstudy_backend/internals/features/assessments/dpps/model"
	"smartstudy_backend/internals/features/comments/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	"smartstudy_backend/internals/testdb"
)

func TestAccessRequiresEnrollment(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 500)
	u := testdb.CreateUser(t, db, constants.RoleStudent)
	target := Target{Type: model.TargetLecture, ID: tree.Lecture.ID}

	assert.ErrorIs(t, svc.CheckAccess(ctx, u.ID, false, target), ErrNoAccess)
	assert.NoError(t, svc.CheckAccess(ctx, u.ID, true, target))
	assert.ErrorIs(t, svc.CheckAccess(ctx, u.ID, true, Target{Type: model.TargetLecture, ID: uuid.New()}), ErrTargetNotFound)

	testdb.EnrollInBatch(t, db, u.ID, tree.Batch.ID)
	assert.NoError(t, svc.CheckAccess(ctx, u.ID, false, target))

	dpp := dppModel.DPPModel{LectureID: tree.Lecture.ID, Title: "DPP", IsActive: true}
	require.NoError(t, db.Create(&dpp).Error)
	sol := dppModel.DPPSolutionModel{DPPID: dpp.ID, VideoType: "youtube", VideoURL: "https://youtu.be/x"}
	require.NoError(t, db.Create(&sol).Error)
	assert.NoError(t, svc.CheckAccess(ctx, u.ID, false, Target{Type: model.TargetSolution, ID: sol.ID}))
}

func TestRepliesAndNotification(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, notifService.New(db, nil))
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)
	alice := testdb.CreateUser(t, db, constants.RoleStudent)
	bob := testdb.CreateUser(t, db, constants.RoleStudent)
	target := Target{Type: model.TargetLecture, ID: tree.Lecture.ID}

	top, err := svc.Add(ctx, alice.ID, target, nil, "  Why is the answer 4?  ")
	require.NoError(t, err)
	assert.Equal(t, "Why is the answer 4?", top.Text)

	_, err = svc.Add(ctx, alice.ID, target, &top.ID, "self reply")
	require.NoError(t, err)
	reply, err := svc.Add(ctx, bob.ID, target, &top.ID, "Because 2+2")
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&notifModel.NotificationModel{}).
		Where("user_id = ? AND type = ?", alice.ID, notifModel.TypeComment).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	_, err = svc.Add(ctx, bob.ID, target, &reply.ID, "nested")
	assert.ErrorIs(t, err, ErrNestedReply)

	other := testdb.CreateBatchTree(t, db, 0)
	_, err = svc.Add(ctx, bob.ID, Target{Type: model.TargetLecture, ID: other.Lecture.ID}, &top.ID, "wrong target")
	assert.ErrorIs(t, err, ErrParentMismatch)

	rows, total, err := svc.List(ctx, bob.ID, target, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].ReplyCount)
	assert.Equal(t, alice.UserName, rows[0].UserName)
	assert.Equal(t, "self reply", rows[0].Replies[0].Text)
}

func TestToggleReaction(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)
	u := testdb.CreateUser(t, db, constants.RoleStudent)
	c, err := svc.Add(ctx, u.ID, Target{Type: model.TargetLecture, ID: tree.Lecture.ID}, nil, "hello")
	require.NoError(t, err)

	st, err := svc.Toggle(ctx, u.ID, c.ID, model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionLike, st.MyReaction)
	assert.EqualValues(t, 1, st.Likes)

	st, err = svc.Toggle(ctx, u.ID, c.ID, model.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionDislike, st.MyReaction)
	assert.EqualValues(t, 0, st.Likes)
	assert.EqualValues(t, 1, st.Dislikes)

	st, err = svc.Toggle(ctx, u.ID, c.ID, model.ReactionDislike)
	require.NoError(t, err)
	assert.Empty(t, st.MyReaction)
	assert.EqualValues(t, 0, st.Dislikes)

	_, err = svc.Toggle(ctx, u.ID, uuid.New(), model.ReactionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestDeleteOwnerOrAdmin(t *testing.T) {
	db := testdb.New(t)
	svc := New(db, nil)
	ctx := context.Background()
	tree := testdb.CreateBatchTree(t, db, 0)
	owner := testdb.CreateUser(t, db, constants.RoleStudent)
	stranger := testdb.CreateUser(t, db, constants.RoleStudent)
	target := Target{Type: model.TargetLecture, ID: tree.Lecture.ID}

	c, err := svc.Add(ctx, owner.ID, target, nil, "mine")
	require.NoError(t, err)
	_, err = svc.Add(ctx, stranger.ID, target, &c.ID, "reply")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, stranger.ID, c.ID, model.ReactionLike)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, stranger.ID, false, c.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, stranger.ID, true, c.ID))

	var n int64
	require.NoError(t, db.Model(&model.CommentModel{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&model.CommentReactionModel{}).Count(&n).Error)
	assert.Zero(t, n)
}
