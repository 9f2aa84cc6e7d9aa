package helper

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
)

/*
BlobService adalah facade upload/hapus yang seragam untuk controller.
Semua method mengembalikan fiber.Error supaya controller cukup meneruskan.
*/
type BlobService interface {
	UploadRawToDir(ctx context.Context, dir string, fh *multipart.FileHeader) (publicURL string, err error)
	UploadImageWebP(ctx context.Context, dir string, fh *multipart.FileHeader) (publicURL string, err error)
	UploadThumbnail(ctx context.Context, dir string, fh *multipart.FileHeader, w, h int) (publicURL string, err error)
	// MoveToTrash tidak langsung menghapus; reaper yang membersihkan.
	MoveToTrash(ctx context.Context, publicURL string) error
}

const maxImageSize = int64(5 * 1024 * 1024)

// NewBlobServiceFromEnv: OSS kalau ENV lengkap, selain itu Noop (upload → 503).
func NewBlobServiceFromEnv() BlobService {
	svc, err := NewOSSServiceFromEnv(strings.TrimSpace(strings.Trim(osPrefix(), "/")))
	if err != nil {
		log.Printf("[OSS] disabled: %v", err)
		return NoopBlobService{}
	}
	return &OSSBlobService{svc: svc, webp: WebPOptionsFromEnv()}
}

/* ---------------- OSS ---------------- */

type OSSBlobService struct {
	svc  *OSSService
	webp WebPOptions
}

func (b *OSSBlobService) UploadRawToDir(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	key, _, err := b.svc.UploadFormFileToDir(ctx, dir, fh)
	if err != nil {
		log.Printf("[OSS] upload %s failed: %v", fh.Filename, err)
		return "", fiber.NewError(fiber.StatusBadGateway, "failed to upload file")
	}
	return b.svc.PublicURL(key), nil
}

func (b *OSSBlobService) UploadImageWebP(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	raw, err := readImage(fh)
	if err != nil {
		return "", err
	}
	data, err := ToWebP(raw, fh.Filename, b.webp)
	if err != nil {
		return "", imageError(err)
	}
	return b.putWebP(ctx, dir, fh.Filename, data)
}

func (b *OSSBlobService) UploadThumbnail(ctx context.Context, dir string, fh *multipart.FileHeader, w, h int) (string, error) {
	raw, err := readImage(fh)
	if err != nil {
		return "", err
	}
	data, err := Thumbnail(raw, fh.Filename, w, h, b.webp.Quality)
	if err != nil {
		return "", imageError(err)
	}
	return b.putWebP(ctx, dir, fh.Filename, data)
}

func (b *OSSBlobService) putWebP(ctx context.Context, dir, filename string, data []byte) (string, error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".webp"
	key, err := b.svc.UploadBytes(ctx, dir, name, "image/webp", data)
	if err != nil {
		log.Printf("[OSS] upload webp %s failed: %v", name, err)
		return "", fiber.NewError(fiber.StatusBadGateway, "failed to upload image")
	}
	return b.svc.PublicURL(key), nil
}

func (b *OSSBlobService) MoveToTrash(ctx context.Context, publicURL string) error {
	if strings.TrimSpace(publicURL) == "" {
		return nil
	}
	key, err := b.svc.KeyFromPublicURL(publicURL)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if _, err := b.svc.MoveToTrash(ctx, key); err != nil {
		log.Printf("[OSS] move to trash %s failed: %v", key, err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to remove file")
	}
	return nil
}

func readImage(fh *multipart.FileHeader) ([]byte, error) {
	if fh == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "image is required")
	}
	if fh.Size > maxImageSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("image too large (max %d bytes)", maxImageSize))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot open image")
	}
	defer f.Close()
	return io.ReadAll(f)
}

func imageError(err error) error {
	if err == ErrUnsupportedImage {
		return fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, "invalid image: "+err.Error())
}

/* ---------------- Noop ---------------- */

type NoopBlobService struct{}

var errStorageDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "file storage is not configured")

func (NoopBlobService) UploadRawToDir(context.Context, string, *multipart.FileHeader) (string, error) {
	return "", errStorageDisabled
}
func (NoopBlobService) UploadImageWebP(context.Context, string, *multipart.FileHeader) (string, error) {
	return "", errStorageDisabled
}
func (NoopBlobService) UploadThumbnail(context.Context, string, *multipart.FileHeader, int, int) (string, error) {
	return "", errStorageDisabled
}
func (NoopBlobService) MoveToTrash(context.Context, string) error { return nil }

/* ---------------- Mock (tests / local) ---------------- */

type MockBlobService struct {
	mu      sync.Mutex
	Uploads []string
	Trashed []string
}

func (m *MockBlobService) record(dir, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := fmt.Sprintf("https://mock.local/%s/%s", strings.Trim(dir, "/"), name)
	m.Uploads = append(m.Uploads, url)
	return url
}

func (m *MockBlobService) UploadRawToDir(_ context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	return m.record(dir, fh.Filename), nil
}
func (m *MockBlobService) UploadImageWebP(_ context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	return m.record(dir, strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))+".webp"), nil
}
func (m *MockBlobService) UploadThumbnail(_ context.Context, dir string, fh *multipart.FileHeader, _, _ int) (string, error) {
	return m.record(dir, "thumb_"+strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))+".webp"), nil
}
func (m *MockBlobService) MoveToTrash(_ context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Trashed = append(m.Trashed, publicURL)
	return nil
}

// FormFile: nil kalau field tidak ada (bukan error).
func FormFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
