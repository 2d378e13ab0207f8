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
	"time"

	"github.com/go-arcade/ensemble/pkg/event"
)

const (
	EventJamConfirmed        = "jam.confirmed"
	EventJamEnded            = "jam.ended"
	EventJamDisbanded        = "jam.disbanded"
	EventSlotVacated         = "jam.slot_vacated"
	EventLeaderChanged       = "jam.leader_changed"
	EventEvaluationSubmitted = "evaluation.submitted"
	EventEvaluationReminder  = "evaluation.reminder"

	typeJam        = "jam"
	typeEvaluation = "evaluation"
)

// JamConfirmed is emitted after a jam moves to CONFIRMED.
type JamConfirmed struct {
	JamId     string    `json:"jamId"`
	LeaderId  string    `json:"leaderId"`
	Occupants []string  `json:"occupants"`
	By        string    `json:"by"`
	At        time.Time `json:"at"`
}

func (JamConfirmed) EventName() string { return EventJamConfirmed }
func (JamConfirmed) EventType() string { return typeJam }

// JamEnded is emitted after a jam moves to ENDED and its evaluation tasks exist.
type JamEnded struct {
	JamId      string    `json:"jamId"`
	Evaluators []string  `json:"evaluators"`
	By         string    `json:"by"`
	At         time.Time `json:"at"`
}

func (JamEnded) EventName() string { return EventJamEnded }
func (JamEnded) EventType() string { return typeJam }

type JamDisbanded struct {
	JamId string    `json:"jamId"`
	By    string    `json:"by"`
	At    time.Time `json:"at"`
}

func (JamDisbanded) EventName() string { return EventJamDisbanded }
func (JamDisbanded) EventType() string { return typeJam }

// SlotVacated is emitted for cancel and kick. Kicked is true when the
// occupant was removed by someone else.
type SlotVacated struct {
	JamId    string    `json:"jamId"`
	SlotId   string    `json:"slotId"`
	RoleCode string    `json:"roleCode"`
	UserId   string    `json:"userId"`
	Kicked   bool      `json:"kicked"`
	By       string    `json:"by"`
	At       time.Time `json:"at"`
}

func (SlotVacated) EventName() string { return EventSlotVacated }
func (SlotVacated) EventType() string { return typeJam }

type LeaderChanged struct {
	JamId string    `json:"jamId"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	At    time.Time `json:"at"`
}

func (LeaderChanged) EventName() string { return EventLeaderChanged }
func (LeaderChanged) EventType() string { return typeJam }

type EvaluationSubmitted struct {
	JamId       string    `json:"jamId"`
	EvaluatorId string    `json:"evaluatorId"`
	Targets     []string  `json:"targets"`
	At          time.Time `json:"at"`
}

func (EvaluationSubmitted) EventName() string { return EventEvaluationSubmitted }
func (EvaluationSubmitted) EventType() string { return typeEvaluation }

// EvaluationReminder nudges an evaluator whose task has been pending for a while.
type EvaluationReminder struct {
	JamId        string    `json:"jamId"`
	EvaluatorId  string    `json:"evaluatorId"`
	PendingSince time.Time `json:"pendingSince"`
}

func (EvaluationReminder) EventName() string { return EventEvaluationReminder }
func (EvaluationReminder) EventType() string { return typeEvaluation }

// outbox 收集事务内产生的事件，提交成功后再发布
type outbox struct {
	events []event.Event
}

func (o *outbox) add(ev event.Event) {
	if o == nil || ev == nil {
		return
	}
	o.events = append(o.events, ev)
}

func (o *outbox) reset() {
	o.events = o.events[:0]
}

func (o *outbox) flush(bus event.Publisher) {
	if bus == nil {
		return
	}
	for _, ev := range o.events {
		bus.Publish(ev)
	}
	o.reset()
}
