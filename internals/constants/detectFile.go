package constants

import (
	"path/filepath"
	"strings"
)

type FileKind string

const (
	FileKindPDF     FileKind = "pdf"
	FileKindVideo   FileKind = "video"
	FileKindImage   FileKind = "image"
	FileKindSheet   FileKind = "sheet"
	FileKindUnknown FileKind = "unknown"
)

func DetectFileKind(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".mp4", ".webm", ".mov", ".mkv":
		return FileKindVideo
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileKindImage
	case ".xlsx":
		return FileKindSheet
	default:
		return FileKindUnknown
	}
}
