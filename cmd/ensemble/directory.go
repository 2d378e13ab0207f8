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
	"strconv"

	"github.com/go-arcade/ensemble/internal/engine/bootstrap"
	"github.com/go-arcade/ensemble/internal/engine/service/directory"
	"github.com/spf13/cobra"
)

func newDirectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Users, clan ranks and role priorities the engine reads",
	}

	user := &cobra.Command{Use: "user", Short: "Manage users"}
	user.AddCommand(&cobra.Command{
		Use:   "add <userId> <displayName>",
		Short: "Register or rename a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return app.Users.Register(ctx, args[0], args[1])
			})
		},
	})

	clan := &cobra.Command{Use: "clan", Short: "Manage clan ranks"}
	clan.AddCommand(&cobra.Command{
		Use:   "set <clanId> <userId> <rank>",
		Short: "Set a member's rank in a clan, 1 and 2 may manage the clan's jams",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := strconv.Atoi(args[2])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return app.Clans.SetRank(ctx, args[0], args[1], rank)
			})
		},
	})

	roles := &cobra.Command{
		Use:   "roles",
		Short: "Print the role priority table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return printJSON(cmd, app.Priorities.Snapshot())
			})
		},
	}
	roles.AddCommand(&cobra.Command{
		Use:   "set <roleCode> <rank>",
		Short: "Set the priority of a role, lower rank leads",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return app.Priorities.Seed(ctx, directory.RankMap{args[0]: rank})
			})
		},
	})

	cmd.AddCommand(user, clan, roles)
	return cmd
}
