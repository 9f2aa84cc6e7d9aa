package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFileKind(t *testing.T) {
	cases := map[string]FileKind{
		"notes.pdf":      FileKindPDF,
		"NOTES.PDF":      FileKindPDF,
		"lecture.mp4":    FileKindVideo,
		"clip.MOV":       FileKindVideo,
		"doubt.jpeg":     FileKindImage,
		"questions.xlsx": FileKindSheet,
		"questions.xls":  FileKindUnknown,
		"noext":          FileKindUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectFileKind(name), name)
	}
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, IsStaff(RoleTeacher))
	assert.True(t, IsStaff(RoleAdmin))
	assert.False(t, IsStaff(RoleStudent))
	assert.True(t, IsValidRole(RoleSalesExecutive))
	assert.False(t, IsValidRole("owner"))
}
