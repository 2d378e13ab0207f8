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

package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenUUID(t *testing.T) {
	assert.Len(t, GetUUID(), 36)
	assert.Len(t, GetUUIDWithoutDashes(), 32)
	assert.NotEqual(t, GetUUID(), GetUUID())
}

func TestGetUlid_Monotonic(t *testing.T) {
	now := time.Now()
	prev := GetUlidAt(now)
	for i := 0; i < 100; i++ {
		next := GetUlidAt(now)
		assert.Len(t, next, 26)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestShortId(t *testing.T) {
	a, b := ShortId(), ShortId()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
