package configs

import (
	"log"
	"os"
	"strings"

	"github.com/rollbar/rollbar-go"
	rollbarErrors "github.com/rollbar/rollbar-go/errors"
)

var rollbarEnabled bool

// InitRollbar aktif hanya kalau ROLLBAR_TOKEN di-set.
func InitRollbar() {
	token := strings.TrimSpace(GetEnv("ROLLBAR_TOKEN"))
	if token == "" {
		rollbar.SetEnabled(false)
		log.Println("⚠️ ROLLBAR_TOKEN is not set, error reporting disabled")
		return
	}
	host, _ := os.Hostname()
	rollbar.SetToken(token)
	rollbar.SetEnvironment(AppEnv)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(GetEnv("APP_VERSION", "dev"))
	rollbar.SetStackTracer(rollbarErrors.StackTracer)
	rollbar.SetEnabled(true)
	rollbarEnabled = true
	log.Println("✅ Rollbar enabled")
}

// ReportError: kirim error + extras ke rollbar (no-op kalau disabled).
func ReportError(err error, extras map[string]interface{}) {
	if !rollbarEnabled || err == nil {
		return
	}
	rollbar.Error(err, extras)
}

func ReportCritical(v interface{}, extras map[string]interface{}) {
	if !rollbarEnabled {
		return
	}
	rollbar.Critical(v, extras)
}

// FlushRollbar dipanggil saat shutdown.
func FlushRollbar() {
	if rollbarEnabled {
		rollbar.Wait()
	}
}
