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

package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/ensemble/pkg/log"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm output into the global zap logger
type GormLogger struct {
	Config logger.Config
	Level  logger.LogLevel
}

func NewGormLogger(config logger.Config, logLevel logger.LogLevel) *GormLogger {
	return &GormLogger{
		Config: config,
		Level:  logLevel,
	}
}

func (l *GormLogger) sugar(ctx context.Context) *zap.SugaredLogger {
	// 调整调用栈深度
	return log.WithContext(ctx).Desugar().WithOptions(zap.AddCallerSkip(2)).Sugar()
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	n := *l
	n.Level = level
	return &n
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Level < logger.Info {
		return
	}
	l.sugar(ctx).Infof(msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Level < logger.Warn {
		return
	}
	l.sugar(ctx).Warnf(msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Level < logger.Error {
		return
	}
	l.sugar(ctx).Errorf(msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin).Seconds() // 转换为秒
	sql, rows := fc()

	if err != nil && l.Level >= logger.Error && (!errors.Is(err, logger.ErrRecordNotFound) || !l.Config.IgnoreRecordNotFoundError) {
		l.sugar(ctx).Errorw("sql failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
		return
	}

	if l.Config.SlowThreshold != 0 && elapsed > l.Config.SlowThreshold.Seconds() && l.Level >= logger.Warn {
		l.sugar(ctx).Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed)
		return
	}

	if l.Level == logger.Info {
		l.sugar(ctx).Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
