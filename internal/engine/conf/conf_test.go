// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-arcade/ensemble/pkg/database"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const sample = `
[log]
level = "DEBUG"

[database]
driver = "mysql"

[database.mysql]
host = "127.0.0.1"
user = "ensemble"
dbname = "ensemble"

[engine]
bcryptCost = 12

[engine.actor]
idleTimeout = "30s"

[cron]
reminderAfter = "48h"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLoader_File(t *testing.T) {
	l, err := NewLoader(writeConfig(t, sample))
	require.NoError(t, err)
	cfg := l.Config()

	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, database.DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "127.0.0.1", cfg.Database.MySQL.Host)
	assert.Equal(t, 12, cfg.Engine.BcryptCost)
	assert.Equal(t, 30*time.Second, cfg.Engine.Actor.IdleTimeout)
	assert.Equal(t, 64, cfg.Engine.Actor.MailboxSize)
	assert.Equal(t, 48*time.Hour, cfg.Cron.ReminderAfter)
	assert.Equal(t, "@every 5m", cfg.Cron.RolePriorityRefreshSpec)
	assert.False(t, cfg.Redis.Enabled())
}

func TestNewLoader_Defaults(t *testing.T) {
	l, err := NewLoader("")
	require.NoError(t, err)
	cfg := l.Config()

	assert.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Engine.BcryptCost)
	assert.Equal(t, 5*time.Minute, cfg.Engine.DirectoryTTL)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestNewLoader_Env(t *testing.T) {
	t.Setenv("ENSEMBLE_ENGINE_BCRYPTCOST", "6")
	t.Setenv("ENSEMBLE_REDIS_ADDRESS", "redis:6379")

	l, err := NewLoader(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 6, l.Config().Engine.BcryptCost)
	assert.Equal(t, "redis:6379", l.Config().Redis.Address)
	assert.True(t, l.Config().Redis.Enabled())
}

func TestNewLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, sample)
	l, err := NewLoader(path)
	require.NoError(t, err)

	var got *AppConfig
	l.OnChange(func(c *AppConfig) { got = c })

	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "WARN"
`), 0o644))
	require.NoError(t, l.v.ReadInConfig())
	l.reload()

	require.NotNil(t, got)
	assert.Equal(t, "WARN", got.Log.Level)
	assert.Equal(t, "WARN", l.Config().Log.Level)
	assert.Equal(t, zapcore.WarnLevel, log.GetLevel())
	log.SetLevel("INFO")
}

func TestLoader_ReloadRunsHookSnapshot(t *testing.T) {
	path := writeConfig(t, sample)
	l, err := NewLoader(path)
	require.NoError(t, err)

	var calls []string
	l.OnChange(func(*AppConfig) {
		calls = append(calls, "first")
		// 回调中注册的新回调从下一次 reload 开始生效
		l.OnChange(func(*AppConfig) { calls = append(calls, "late") })
	})

	l.reload()
	assert.Equal(t, []string{"first"}, calls)

	calls = nil
	l.reload()
	assert.Equal(t, []string{"first", "late"}, calls)
	log.SetLevel("INFO")
}
