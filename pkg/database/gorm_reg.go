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
	"fmt"
	"sync"

	"gorm.io/gorm"
)

var (
	modelsMu         sync.Mutex
	registeredModels []any
)

// RegisterModels registers models migrated by AutoMigrate.
func RegisterModels(models ...any) {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	registeredModels = append(registeredModels, models...)
}

// AutoMigrate migrates every registered model.
func AutoMigrate(db *gorm.DB) error {
	models := GetRegisteredModels()
	if len(models) == 0 {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// GetRegisteredModels returns the registered models for Gorm.
func GetRegisteredModels() []any {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	return append([]any(nil), registeredModels...)
}
