package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"smartstudy_backend/internals/configs"
)

// RegisterOrderExpiry: tiap jam, order pending > ORDER_PENDING_TTL_HOURS jadi expired.
func RegisterOrderExpiry(c *cron.Cron, svc *OrderService) {
	ttl := time.Duration(configs.GetEnvInt("ORDER_PENDING_TTL_HOURS", 24)) * time.Hour
	spec := configs.GetEnv("ORDER_EXPIRY_CRON", "@hourly")

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := svc.ExpirePending(ctx, ttl)
		if err != nil {
			log.Printf("[CRON] order expiry failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[CRON] %d pending orders expired", n)
		}
	})
	if err != nil {
		log.Printf("[CRON] invalid order expiry spec %q: %v", spec, err)
		return
	}
	log.Printf("⏳ order expiry scheduled (%s, ttl %s)", spec, ttl)
}
