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

	"github.com/go-arcade/ensemble/internal/engine/bootstrap"
	model "github.com/go-arcade/ensemble/internal/engine/model/jam"
	"github.com/spf13/cobra"
)

func newJamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jam",
		Short: "Create jams and change their slots and lifecycle",
	}
	cmd.PersistentFlags().IntVar(&retries, "retry", 0, "retry this many times when the jam was modified concurrently")

	cmd.AddCommand(
		newJamCreateCmd(),
		newJamJoinCmd(),
		newJamCancelCmd(),
		newJamKickCmd(),
		newJamTransitionCmd("confirm", "Lock a full jam"),
		newJamTransitionCmd("end", "End a confirmed jam and open evaluations"),
		newJamTransitionCmd("disband", "Disband a forming or confirmed jam"),
		newJamShowCmd(),
		newJamFindCmd(),
	)
	return cmd
}

func newJamCreateCmd() *cobra.Command {
	var (
		req   model.CreateJamReq
		roles []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a jam in FORMING with one slot per role",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.RoleCodes = roles
			req.Secret = req.Password != ""
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				resp, err := app.Jams.Create(ctx, &req)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.CreatorUserId, "user", "", "creator user id")
	f.StringVar(&req.Title, "title", "", "jam title")
	f.StringVar(&req.ClanId, "clan", "", "owning clan id")
	f.StringSliceVar(&roles, "roles", nil, "role codes, one slot each, e.g. --roles vocal,guitar,drums")
	f.StringVar(&req.Password, "password", "", "make the jam secret with this password")
	f.StringVar(&req.SongMeta.Artist, "artist", "", "song artist")
	f.StringVar(&req.SongMeta.Title, "song", "", "song title")
	f.StringVar(&req.SongMeta.Genre, "genre", "", "song genre")
	f.IntVar(&req.SongMeta.BPM, "bpm", 0, "song tempo")
	f.StringVar(&req.SongMeta.Key, "key", "", "song key")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("roles")
	return cmd
}

func newJamJoinCmd() *cobra.Command {
	var req model.JoinReq
	cmd := &cobra.Command{
		Use:   "join <jamId> <slotId>",
		Short: "Occupy a vacant slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.JamId, req.SlotId = args[0], args[1]
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return withRetry(ctx, func(ctx context.Context) error {
					return app.Jams.Join(ctx, &req)
				})
			})
		},
	}
	cmd.Flags().StringVar(&req.UserId, "user", "", "joining user id")
	cmd.Flags().StringVar(&req.Password, "password", "", "password of a secret jam")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newJamCancelCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "cancel <jamId> <slotId>",
		Short: "Leave a slot you occupy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return withRetry(ctx, func(ctx context.Context) error {
					return app.Jams.Cancel(ctx, args[0], args[1], user)
				})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "occupant user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newJamKickCmd() *cobra.Command {
	var by, target string
	cmd := &cobra.Command{
		Use:   "kick <jamId> <slotId>",
		Short: "Remove another user from a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				return withRetry(ctx, func(ctx context.Context) error {
					return app.Jams.Kick(ctx, args[0], args[1], by, target)
				})
			})
		},
	}
	cmd.Flags().StringVar(&by, "user", "", "acting user id")
	cmd.Flags().StringVar(&target, "target", "", "user to remove")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newJamTransitionCmd(name, short string) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   name + " <jamId>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				var op func(ctx context.Context, jamId, actorUserId string) error
				switch name {
				case "confirm":
					op = app.Jams.Confirm
				case "end":
					op = app.Jams.End
				case "disband":
					op = app.Jams.Disband
				default:
					return fmt.Errorf("unknown transition %s", name)
				}
				return withRetry(ctx, func(ctx context.Context) error {
					return op(ctx, args[0], user)
				})
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "acting user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newJamShowCmd() *cobra.Command {
	var viewer string
	cmd := &cobra.Command{
		Use:   "show <jamId>",
		Short: "Print a jam with its slots, members and the viewer's permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				detail, err := app.Jams.GetDetail(ctx, args[0], viewer)
				if err != nil {
					return err
				}
				return printJSON(cmd, detail)
			})
		},
	}
	cmd.Flags().StringVar(&viewer, "user", "", "viewer user id")
	return cmd
}

func newJamFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <shareCode>",
		Short: "Resolve a share code to a jam id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				jamId, err := app.Jams.GetByShareCode(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), jamId)
				return err
			})
		},
	}
}
