package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"smartstudy_backend/internals/configs"
	authService "smartstudy_backend/internals/features/users/auth/service"
)

// RegisterBlacklistCleanup mendaftarkan job pembersihan token_blacklist + refresh_tokens kadaluarsa.
func RegisterBlacklistCleanup(c *cron.Cron, db *gorm.DB) {
	graceDays := configs.GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 7)
	spec := configs.GetEnv("TOKEN_CLEANUP_CRON", "0 3 * * *")

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		n, err := authService.PurgeExpired(ctx, db, time.Duration(graceDays)*24*time.Hour)
		if err != nil {
			log.Printf("[CLEANUP ERROR] purge token gagal: %v", err)
			return
		}
		log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
	})
	if err != nil {
		log.Printf("[CLEANUP ERROR] invalid cron spec %q: %v", spec, err)
		return
	}
	log.Printf("🧹 token cleanup scheduled (%s, grace %dd)", spec, graceDays)
}
