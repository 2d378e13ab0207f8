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
	"encoding/json"
	"time"
)

// DefaultChannel is the redis pub/sub channel engine events are relayed to.
const DefaultChannel = "ensemble:events"

// Conf 事件转发配置
type Conf struct {
	Channel     string `mapstructure:"channel"`
	MaxAttempts int    `mapstructure:"maxAttempts"`
	QueueSize   int    `mapstructure:"queueSize"` // 待转发队列长度，满了丢弃
}

func (c *Conf) SetDefaults() {
	if c.Channel == "" {
		c.Channel = DefaultChannel
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
}

// Envelope is the wire form of one relayed event.
type Envelope struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}
