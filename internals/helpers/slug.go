package helper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	reSlugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reSlugDashes   = regexp.MustCompile(`-{2,}`)
)

// Slugify: teks bebas → [a-z0-9-], diakritik dibuang, fallback "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := reSlugNonAlnum.ReplaceAllString(b.String(), "-")
	out = strings.Trim(reSlugDashes.ReplaceAllString(out, "-"), "-")
	if len(out) > maxLen {
		out = strings.Trim(out[:maxLen], "-")
	}
	if out == "" {
		return "item"
	}
	return out
}

// EnsureUniqueSlug menambah suffix -2, -3, ... sampai slug belum dipakai di table.column.
// excludeID dipakai saat update supaya baris sendiri tidak dihitung.
func EnsureUniqueSlug(ctx context.Context, db *gorm.DB, table, column, base string, excludeID any, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = 100
	}
	slug := base
	for i := 2; i < 200; i++ {
		q := db.WithContext(ctx).Table(table).Where(fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(slug))
		if excludeID != nil {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxLen {
			trimmed = strings.Trim(trimmed[:maxLen-len(suffix)], "-")
		}
		slug = trimmed + suffix
	}
	return "", fmt.Errorf("cannot generate unique slug for %q", base)
}
