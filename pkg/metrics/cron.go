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

	"github.com/go-arcade/ensemble/pkg/cron"
	"github.com/prometheus/client_golang/prometheus"
)

// CronMetricsRecorder implements cron.MetricsRecorder
type CronMetricsRecorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	lastRun  *prometheus.GaugeVec
	jobs     prometheus.Gauge
}

// NewCronMetricsRecorder creates the cron collectors and registers them on reg
func NewCronMetricsRecorder(reg prometheus.Registerer) *CronMetricsRecorder {
	r := &CronMetricsRecorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_runs_total",
			Help: "Total number of cron job runs",
		}, []string{"job_name"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cron_job_run_duration_seconds",
			Help:    "Duration of cron job runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		}, []string{"job_name"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_errors_total",
			Help: "Total number of cron job errors",
		}, []string{"job_name"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cron_job_last_run_time_seconds",
			Help: "Last run time of cron job in seconds since epoch",
		}, []string{"job_name"}),
		jobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cron_jobs_total",
			Help: "Total number of registered cron jobs",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.runs, r.duration, r.errors, r.lastRun, r.jobs)
	}
	return r
}

// RecordJobRun records a cron job run
func (r *CronMetricsRecorder) RecordJobRun(jobName string, duration time.Duration, err error) {
	if err != nil {
		r.errors.WithLabelValues(jobName).Inc()
	}
	r.runs.WithLabelValues(jobName).Inc()
	r.duration.WithLabelValues(jobName).Observe(duration.Seconds())
	r.lastRun.WithLabelValues(jobName).Set(float64(time.Now().Unix()))
}

// UpdateJobsCount updates the total number of registered cron jobs
func (r *CronMetricsRecorder) UpdateJobsCount(count int) {
	r.jobs.Set(float64(count))
}

// SetupCronMetrics registers cron collectors and installs the recorder
func SetupCronMetrics(reg prometheus.Registerer) *CronMetricsRecorder {
	r := NewCronMetricsRecorder(reg)
	cron.SetMetricsRecorder(r)
	return r
}
