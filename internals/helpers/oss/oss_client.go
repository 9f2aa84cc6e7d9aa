// file: internals/helpers/oss/oss_client.go
package helper

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"smartstudy_backend/internals/configs"
	helper "smartstudy_backend/internals/helpers"
)

const TrashPrefix = "trash/"

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string
	Prefix     string // optional, mis. "uploads"
}

func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := strings.TrimSpace(configs.GetEnv("ALI_OSS_ENDPOINT"))
	ak := strings.TrimSpace(configs.GetEnv("ALI_OSS_ACCESS_KEY"))
	sk := strings.TrimSpace(configs.GetEnv("ALI_OSS_SECRET_KEY"))
	sts := strings.TrimSpace(configs.GetEnv("ALI_OSS_SECURITY_TOKEN"))
	bucketName := strings.TrimSpace(configs.GetEnv("ALI_OSS_BUCKET"))
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var opts []oss.ClientOption
	if sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == http.StatusForbidden {
			log.Printf("[OSS] warn: skip location check (AccessDenied) bucket=%s", bucketName)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", bucketName, loc)
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: strings.TrimRight(strings.TrimSpace(configs.GetEnv("ALI_OSS_PUBLIC_BASE")), "/"),
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (s *OSSService) put(ctx context.Context, key string, r io.Reader, contentType string) error {
	return s.Bucket.PutObject(key, r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
}

// UploadFormFileToDir: upload apa adanya (tanpa recompress) ke subdir.
func (s *OSSService) UploadFormFileToDir(ctx context.Context, dir string, fh *multipart.FileHeader) (key, contentType string, err error) {
	if fh == nil {
		return "", "", fmt.Errorf("nil file header")
	}
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	ct, reader, err := detectContentType(src, fh.Filename)
	if err != nil {
		return "", "", err
	}
	key = s.BuildObjectKey(dir, fh.Filename)
	if err := s.put(ctx, key, reader, ct); err != nil {
		return "", "", err
	}
	return key, ct, nil
}

func (s *OSSService) UploadBytes(ctx context.Context, dir, filename, contentType string, data []byte) (string, error) {
	key := s.BuildObjectKey(dir, filename)
	if err := s.put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *OSSService) DeleteObject(ctx context.Context, key string) error {
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

// MoveToTrash: copy ke trash/<key> lalu hapus aslinya; reaper membersihkan trash/.
func (s *OSSService) MoveToTrash(ctx context.Context, key string) (string, error) {
	dst := TrashPrefix + strings.TrimPrefix(key, "/")
	if _, err := s.Bucket.CopyObject(key, dst, oss.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("copy to trash: %w", err)
	}
	if err := s.DeleteObject(ctx, key); err != nil {
		return "", fmt.Errorf("delete original: %w", err)
	}
	return dst, nil
}

/* =======================================================================
   Public URL & Key utils
======================================================================= */

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSService) KeyFromPublicURL(publicURL string) (string, error) {
	if publicURL == "" {
		return "", fmt.Errorf("empty url")
	}
	if s.PublicBase != "" && strings.HasPrefix(publicURL, s.PublicBase+"/") {
		return strings.TrimPrefix(publicURL, s.PublicBase+"/"), nil
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 && i+1 < len(u) {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}

// BuildObjectKey: <prefix>/<dir>/<slug-nama>_<ts>_<rand><ext>
func (s *OSSService) BuildObjectKey(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := helper.Slugify(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), 60)

	parts := make([]string, 0, 3)
	if s.Prefix != "" {
		parts = append(parts, s.Prefix)
	}
	if d := strings.Trim(dir, "/"); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, fmt.Sprintf("%s_%s_%s%s", base, time.Now().Format("20060102_150405"), randHex(3), ext))
	return strings.Join(parts, "/")
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// detectContentType: ekstensi dulu, lalu sniff 512B kalau masih kosong.
func detectContentType(src multipart.File, filename string) (string, io.Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct := mime.TypeByExtension(ext)

	head := make([]byte, 512)
	n, _ := io.ReadFull(io.LimitReader(src, 512), head)
	if n > 0 && (ct == "" || ct == "application/octet-stream") {
		ct = http.DetectContentType(head[:n])
	}
	if ext == ".webp" {
		ct = "image/webp"
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", nil, fmt.Errorf("rewind file: %w", err)
	}
	return ct, src, nil
}

func osPrefix() string { return configs.GetEnv("ALI_OSS_PREFIX", "smartstudy") }
