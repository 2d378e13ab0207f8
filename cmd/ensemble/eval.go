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
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-arcade/ensemble/internal/engine/bootstrap"
	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Peer evaluations of ended jams",
	}
	cmd.AddCommand(newEvalSubmitCmd(), newEvalPendingCmd())
	return cmd
}

// parseScores 解析 "user=score" 形式的评分
func parseScores(pairs []string, moodMaker string) ([]model.EvaluationInput, error) {
	out := make([]model.EvaluationInput, 0, len(pairs))
	for _, p := range pairs {
		target, raw, ok := strings.Cut(p, "=")
		if !ok || target == "" {
			return nil, fmt.Errorf("score %q must look like user=score", p)
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", p, err)
		}
		out = append(out, model.EvaluationInput{
			TargetUserId: target,
			Score:        score,
			MoodMaker:    target == moodMaker,
		})
	}
	return out, nil
}

func newEvalSubmitCmd() *cobra.Command {
	var (
		user      string
		scores    []string
		moodMaker string
	)
	cmd := &cobra.Command{
		Use:   "submit <jamId>",
		Short: "Submit your evaluation of the other participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseScores(scores, moodMaker)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return app.Jams.SubmitEvaluation(ctx, args[0], user, inputs)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "evaluator user id")
	cmd.Flags().StringSliceVar(&scores, "score", nil, "target=score, repeatable")
	cmd.Flags().StringVar(&moodMaker, "mood-maker", "", "target chosen as mood maker")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newEvalPendingCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show the newest evaluation still waiting for you",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				pending, err := app.Jams.GetPendingEvaluation(ctx, user)
				if err != nil {
					return err
				}
				if pending == nil {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "no pending evaluation")
					return err
				}
				return printJSON(cmd, pending)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "evaluator user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
