package seeds

import (
	"context"
	"embed"
	"fmt"
	"log"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

//go:embed data/*.json
var dataFS embed.FS

// RunAllSeeds: idempotent, data yang sudah ada (berdasarkan email/slug/nama) dilewati.
func RunAllSeeds(ctx context.Context, db *gorm.DB) error {
	steps := []struct {
		name string
		fn   func(context.Context, *gorm.DB) error
	}{
		{"users", seedUsers},
		{"courses", seedCourses},
		{"batches", seedBatches},
		{"sales", seedSales},
	}
	for _, s := range steps {
		log.Printf("[SEED] 📥 %s...", s.name)
		if err := s.fn(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.name, err)
		}
	}
	log.Println("[SEED] ✅ done")
	return nil
}

func readJSON(name string, out any) error {
	b, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(b, out)
}
