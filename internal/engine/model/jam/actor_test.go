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

package jam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor(t *testing.T) {
	u := User("u-1")
	id, ok := u.UserID()
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)
	assert.False(t, u.IsSystem())
	assert.Equal(t, "user:u-1", u.String())

	_, ok = System.UserID()
	assert.False(t, ok)
	assert.True(t, System.IsSystem())
	assert.Equal(t, "system", System.String())
}

func TestParseActor(t *testing.T) {
	tests := []struct {
		in      string
		want    Actor
		wantErr bool
	}{
		{in: "system", want: System},
		{in: "user:abc", want: User("abc")},
		{in: "user:", wantErr: true},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseActor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActorSQL(t *testing.T) {
	v, err := User("b").Value()
	require.NoError(t, err)

	var a Actor
	require.NoError(t, a.Scan(v))
	assert.Equal(t, User("b"), a)

	require.NoError(t, a.Scan([]byte("system")))
	assert.Equal(t, System, a)

	_, err = Actor{}.Value()
	assert.Error(t, err)
	assert.Error(t, a.Scan(nil))
}

func TestActorText(t *testing.T) {
	b, err := User("x").MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "user:x", string(b))

	var a Actor
	require.NoError(t, a.UnmarshalText([]byte("system")))
	assert.True(t, a.IsSystem())
}
