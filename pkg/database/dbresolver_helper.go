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
	"gorm.io/plugin/dbresolver"
)

// ReadDB routes the statement to a replica. Without registered replicas the
// clause is a no-op.
func ReadDB(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Read)
}

// ReadConn 事务内使用事务连接，保证读到本事务的写入；事务外的读走只读副本
func ReadConn(ctx context.Context, db DB) *gorm.DB {
	if InTransaction(ctx) {
		return db.Conn(ctx)
	}
	return ReadDB(db.Conn(ctx))
}
