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

	"gorm.io/gorm"
)

type txKey struct{}

// DB 定义数据库接口（抽象）
type DB interface {
	// DB 返回底层的 *gorm.DB
	DB() *gorm.DB

	// Conn 返回 ctx 中的事务连接，不在事务中时返回带 ctx 的普通连接
	Conn(ctx context.Context) *gorm.DB

	// Transaction 在一个事务中执行 fn，fn 内通过 Conn(ctx) 获取事务连接
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormDB GORM 数据库实现
type GormDB struct {
	db *gorm.DB
}

// NewGormDB 创建 GORM 数据库实例
func NewGormDB(db *gorm.DB) DB {
	return &GormDB{db: db}
}

// DB 返回底层的 *gorm.DB
func (g *GormDB) DB() *gorm.DB {
	return g.db
}

func (g *GormDB) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return g.db.WithContext(ctx)
}

// Transaction 嵌套调用时复用外层事务
func (g *GormDB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
