package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "jee-main-crash-course-2025", Slugify("  JEE Main: Crash Course (2025) ", 0))
	assert.Equal(t, "cafe-physique", Slugify("Café  Physique", 0))
	assert.Equal(t, "item", Slugify("!!!", 0))
	assert.Equal(t, "abc", Slugify("abc-def", 4))
}
