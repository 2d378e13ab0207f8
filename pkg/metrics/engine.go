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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ensemble"

// EngineMetrics holds the jam engine collectors. A nil *EngineMetrics is
// valid and records nothing.
type EngineMetrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	evaluations prometheus.Counter
	actors      prometheus.Gauge
}

// NewEngineMetrics creates the engine collectors and registers them on reg
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jam",
			Name:      "operations_total",
			Help:      "Jam engine operations by result",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jam",
			Name:      "operation_duration_seconds",
			Help:      "Jam engine operation latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jam",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions",
		}, []string{"from", "to"}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_submitted_total",
			Help:      "Evaluation submissions accepted",
		}),
		actors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jam_actors",
			Help:      "Live per-jam actors",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration, m.transitions, m.evaluations, m.actors)
	}
	return m
}

// ObserveOperation records one finished operation
func (m *EngineMetrics) ObserveOperation(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *EngineMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *EngineMetrics) IncEvaluations() {
	if m == nil {
		return
	}
	m.evaluations.Inc()
}

// SetActors 当前存活的 jam actor 数量
func (m *EngineMetrics) SetActors(n int) {
	if m == nil {
		return
	}
	m.actors.Set(float64(n))
}
