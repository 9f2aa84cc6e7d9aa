package video

import (
	"regexp"
	"strings"
)

const (
	TypeYouTube = "youtube"
	TypeVimeo   = "vimeo"
	TypeDrive   = "drive"
	TypeUpload  = "upload"
	TypeURL     = "url"
)

var (
	reYouTube = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|shorts/|live/)|youtu\.be/)([A-Za-z0-9_-]{6,})`)
	reVimeo   = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	reDrive   = regexp.MustCompile(`drive\.google\.com/(?:file/d/|open\?id=)([A-Za-z0-9_-]+)`)
)

func ValidType(t string) bool {
	switch t {
	case TypeYouTube, TypeVimeo, TypeDrive, TypeUpload, TypeURL:
		return true
	}
	return false
}

// EmbedURL mengubah URL tontonan jadi URL iframe. Kosong kalau polanya tidak dikenal.
func EmbedURL(videoType, rawURL string) string {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return ""
	}
	switch videoType {
	case TypeYouTube:
		if m := reYouTube.FindStringSubmatch(u); m != nil {
			return "https://www.youtube.com/embed/" + m[1]
		}
	case TypeVimeo:
		if m := reVimeo.FindStringSubmatch(u); m != nil {
			return "https://player.vimeo.com/video/" + m[1]
		}
	case TypeDrive:
		if m := reDrive.FindStringSubmatch(u); m != nil {
			return "https://drive.google.com/file/d/" + m[1] + "/preview"
		}
	case TypeUpload, TypeURL:
		return u
	}
	return ""
}
