package helper

import (
	"context"
	"log"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/robfig/cron/v3"

	"smartstudy_backend/internals/configs"
)

// RegisterTrashReaper memasang job pembersih trash/ ke scheduler yang sudah ada.
// Tidak melakukan apa-apa kalau storage bukan OSS.
func RegisterTrashReaper(c *cron.Cron, blobs BlobService) {
	ob, ok := blobs.(*OSSBlobService)
	if !ok {
		log.Println("[OSS-REAPER] storage is not OSS, reaper skipped")
		return
	}
	retention := time.Duration(configs.GetEnvInt("TRASH_RETENTION_DAYS", 30)) * 24 * time.Hour
	dryRun := configs.GetEnvBool("TRASH_REAPER_DRY_RUN", false)
	schedule := configs.GetEnv("TRASH_REAPER_CRON", "15 2 * * *")

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if err := runOSSReaper(ctx, ob.svc.Bucket, TrashPrefix, retention, dryRun); err != nil {
			log.Printf("[OSS-REAPER] error: %v", err)
		}
	})
	if err != nil {
		log.Printf("[OSS-REAPER] add cron failed: %v", err)
		return
	}
	log.Printf("[OSS-REAPER] scheduled %q retention=%s dryRun=%v", schedule, retention, dryRun)
}

func runOSSReaper(ctx context.Context, bucket *oss.Bucket, prefix string, retention time.Duration, dryRun bool) error {
	threshold := time.Now().Add(-retention)
	marker := oss.Marker("")
	var keys []string

	for {
		lor, err := bucket.ListObjects(oss.Prefix(prefix), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return err
		}
		for _, obj := range lor.Objects {
			if obj.Key != "" && obj.LastModified.Before(threshold) {
				keys = append(keys, obj.Key)
			}
		}
		if !lor.IsTruncated {
			break
		}
		marker = oss.Marker(lor.NextMarker)
	}

	if len(keys) == 0 {
		return nil
	}
	if dryRun {
		log.Printf("[OSS-REAPER] DRY-RUN would delete %d objects under %q", len(keys), prefix)
		return nil
	}
	for i := 0; i < len(keys); i += 1000 {
		end := min(i+1000, len(keys))
		if _, err := bucket.DeleteObjects(keys[i:end], oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			log.Printf("[OSS-REAPER] delete batch %d-%d failed: %v", i, end, err)
		}
	}
	log.Printf("[OSS-REAPER] deleted %d objects under %q", len(keys), prefix)
	return nil
}
