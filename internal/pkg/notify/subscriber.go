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

package notify

import (
	"context"
	"fmt"

	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/redis/go-redis/v9"
)

// Tail subscribes to channel and calls fn for each decoded envelope until
// ctx is done.
func Tail(ctx context.Context, client *redis.Client, channel string, fn func(Envelope)) error {
	sub := client.Subscribe(ctx, channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s failed: %w", channel, err)
	}
	log.Infow("subscribed", "channel", channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			env, err := Decode(msg.Payload)
			if err != nil {
				log.Warnw("skip undecodable message", "channel", channel, "error", err)
				continue
			}
			fn(env)
		}
	}
}
