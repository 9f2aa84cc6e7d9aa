package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedURL(t *testing.T) {
	cases := []struct {
		name, typ, in, want string
	}{
		{"youtube watch", TypeYouTube, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"youtube short link", TypeYouTube, "https://youtu.be/dQw4w9WgXcQ?t=10", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"youtube garbage", TypeYouTube, "https://example.com/video", ""},
		{"vimeo", TypeVimeo, "https://vimeo.com/76979871", "https://player.vimeo.com/video/76979871"},
		{"drive", TypeDrive, "https://drive.google.com/file/d/1AbC_dEf/view?usp=sharing", "https://drive.google.com/file/d/1AbC_dEf/preview"},
		{"plain url", TypeURL, " https://cdn.example.com/a.mp4 ", "https://cdn.example.com/a.mp4"},
		{"empty", TypeYouTube, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EmbedURL(tc.typ, tc.in))
		})
	}
}

func TestValidType(t *testing.T) {
	assert.True(t, ValidType("drive"))
	assert.False(t, ValidType("dailymotion"))
}
