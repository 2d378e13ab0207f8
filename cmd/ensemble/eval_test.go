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

package main

import (
	"testing"

	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScores(t *testing.T) {
	tests := []struct {
		name      string
		pairs     []string
		moodMaker string
		want      []model.EvaluationInput
		wantErr   bool
	}{
		{
			name:      "scores with mood maker",
			pairs:     []string{"C=4.5", "D=5"},
			moodMaker: "D",
			want: []model.EvaluationInput{
				{TargetUserId: "C", Score: 4.5},
				{TargetUserId: "D", Score: 5, MoodMaker: true},
			},
		},
		{
			name:  "no scores",
			pairs: nil,
			want:  []model.EvaluationInput{},
		},
		{name: "missing separator", pairs: []string{"C"}, wantErr: true},
		{name: "missing target", pairs: []string{"=3"}, wantErr: true},
		{name: "not a number", pairs: []string{"C=great"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScores(tt.pairs, tt.moodMaker)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "jam", "eval", "events", "directory", "version"})

	jam, _, err := root.Find([]string{"jam", "confirm"})
	require.NoError(t, err)
	assert.Equal(t, "confirm", jam.Name())
	assert.NotNil(t, root.PersistentFlags().ShorthandLookup("c"))
}
