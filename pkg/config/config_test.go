package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, EmailProviderSMTP, cfg.Notifications.EmailProvider)
	require.Equal(t, 10*time.Second, cfg.Notifications.ChannelTimeout)
	require.Equal(t, RateLimitBackendRedis, cfg.RateLimit.Backend)
	require.Equal(t, int64(10*1024*1024), cfg.Attachments.MaxFileSizeBytes)
	require.Equal(t, 5, cfg.Attachments.MaxPerAppeal)
	require.Equal(t, []string{"authenticated"}, cfg.Auth.Audience)
	require.False(t, cfg.Overdue.Enabled)
	require.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	require.Equal(t, "council", cfg.Redis.KeyPrefix)
	require.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NOTIFY_CHANNEL_TIMEOUT", "3s")
	t.Setenv("EMAIL_PROVIDER", "Resend")
	t.Setenv("PUBLIC_BASE_URL", "https://council.example.edu/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.Notifications.ChannelTimeout)
	require.Equal(t, EmailProviderResend, cfg.Notifications.EmailProvider)
	require.Equal(t, "https://council.example.edu", cfg.Notifications.PublicBaseURL)
}

func TestParseDurationFallback(t *testing.T) {
	require.Equal(t, time.Minute, parseDuration("nope", time.Minute))
	require.Equal(t, time.Minute, parseDuration("", time.Minute))
	require.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	require.Nil(t, splitAndTrim(""))
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
