package grading

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	helper "smartstudy_backend/internals/helpers"
)

var (
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptCompleted  = errors.New("attempt already submitted")
	ErrUnknownQuestion   = errors.New("question does not belong to this attempt")
	ErrInvalidOption     = errors.New("invalid answer option")
	ErrNoQuestions       = errors.New("assessment has no questions")
	ErrInactive          = errors.New("assessment is not active")
	ErrAssessmentLocked  = errors.New("assessment already has attempts, questions are locked")
	ErrNotEnrolled       = errors.New("you are not enrolled in this batch")
	ErrAssessmentMissing = errors.New("assessment not found")
)

// ToFiberError memetakan sentinel ke status HTTP. Error lain → nil.
func ToFiberError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrAttemptNotFound), errors.Is(err, ErrAssessmentMissing):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrAttemptCompleted), errors.Is(err, ErrAssessmentLocked):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownQuestion):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidOption), errors.Is(err, ErrNoQuestions), errors.Is(err, ErrInactive):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotEnrolled):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}
	return nil
}

// WriteError: sentinel grading → status-nya, error DB → MapDBError.
func WriteError(c *fiber.Ctx, err error) error {
	if fe := ToFiberError(err); fe != nil {
		return helper.JsonError(c, fe.Code, err.Error())
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	return helper.WriteDBError(c, err)
}
