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
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ensemble/internal/engine/bootstrap"
	jamsvc "github.com/go-arcade/ensemble/internal/engine/service/jam"
	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/retry"
	"github.com/go-arcade/ensemble/pkg/version"
	"github.com/spf13/cobra"
)

var (
	configFile string
	retries    int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ensemble",
		Short:         "ensemble is the jam allocation, lifecycle and succession engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path, e.g. -c ./conf.d/config.toml")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newJamCmd(),
		newEvalCmd(),
		newEventsCmd(),
		newDirectoryCmd(),
		version.VersionCmd,
	)
	return root
}

// withApp 构建 App 并在命令结束后释放资源
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
	if err != nil {
		return err
	}
	defer func() {
		cleanup()
		_ = log.Sync()
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app.Prepare(ctx)
	return fn(ctx, app)
}

// withRetry 在 jam 被并发修改时按 --retry 次数重试
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	if retries <= 0 {
		return fn(ctx)
	}
	return retry.Do(ctx, fn,
		retry.WithMaxAttempts(retries+1),
		retry.WithRetryIf(jamsvc.IsRetryable),
		retry.WithBackoff(retry.Exponential(100*time.Millisecond, 2*time.Second)),
		retry.WithJitter(retry.FullJitter),
		retry.WithOnRetry(func(attempt int, err error) {
			log.Warnw("retrying after conflict", "attempt", attempt, "error", err)
		}),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
