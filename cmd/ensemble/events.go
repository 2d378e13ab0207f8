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
	"errors"
	"os/signal"
	"syscall"

	"github.com/go-arcade/ensemble/internal/engine/bootstrap"
	"github.com/go-arcade/ensemble/internal/pkg/notify"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Engine events relayed through redis",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Print events as they are published until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if app.Redis == nil {
					return errors.New("redis is not configured, events are not relayed")
				}
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				nc := app.AppConf.Notify
				nc.SetDefaults()
				return notify.Tail(ctx, app.Redis, nc.Channel, func(env notify.Envelope) {
					_ = printJSON(cmd, env)
				})
			})
		},
	})
	return cmd
}
