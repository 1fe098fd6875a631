package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
platforms: [boss]
boss:
  search:
    keywords: [golang]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Boss.Apply.DailyLimit)
	assert.Equal(t, 20, cfg.Boss.Apply.BatchLimit)
	assert.Equal(t, 30, cfg.Boss.Apply.IntervalMin)
	assert.Equal(t, 60, cfg.Boss.Apply.IntervalMax)
	assert.Equal(t, 0, cfg.Boss.Apply.MaxScan)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 10, cfg.Schedule.WeekendLimit)
	assert.Equal(t, 60, cfg.Schedule.CheckInterval)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	path := writeConfig(t, `
telegram:
  token: yaml-token
  chat_id: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, int64(12345), cfg.Telegram.ChatID)
}

func TestLoadRejectsBadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load(writeConfig(t, `platforms: [boss]`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateCatchesBadValues(t *testing.T) {
	path := writeConfig(t, `
platforms: [boss, myspace]
boss:
  search:
    keywords: [golang]
  apply:
    interval_min: 90
    interval_max: 30
schedule:
  enabled: true
  times: ["9:75", "14:00"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	res := cfg.Validate()
	assert.False(t, res.OK())

	joined := ""
	for _, e := range res.Errors {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "myspace")
	assert.Contains(t, joined, "interval_min")
	assert.Contains(t, joined, "9:75")
}

func TestValidateWarnsOnEmptyKeywords(t *testing.T) {
	cfg, err := Load(writeConfig(t, `platforms: [liepin]`))
	require.NoError(t, err)

	res := cfg.Validate()
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.Warnings)
}

func TestPlatformAccessor(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
liepin:
  apply:
    daily_limit: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Platform("liepin").Apply.DailyLimit)
	assert.Nil(t, cfg.Platform("linkedin"))
}
