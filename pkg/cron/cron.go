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

package cron

import (
	"errors"
	"fmt"
	stdlog "log"
	"sort"
	"sync"
	"time"

	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/safe"
	robfig "github.com/robfig/cron"
)

var ErrDuplicateName = errors.New("cron job name already registered")

// MetricsRecorder receives job run observations.
type MetricsRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateJobsCount(count int)
}

var (
	recorderMu sync.RWMutex
	recorder   MetricsRecorder
)

// SetMetricsRecorder installs the recorder used by every Cron.
func SetMetricsRecorder(r MetricsRecorder) {
	recorderMu.Lock()
	defer recorderMu.Unlock()
	recorder = r
}

func getRecorder() MetricsRecorder {
	recorderMu.RLock()
	defer recorderMu.RUnlock()
	return recorder
}

// Job is the unit scheduled by Cron.
type Job interface {
	Run()
}

// FuncJob adapts a func to Job.
type FuncJob func()

func (f FuncJob) Run() { f() }

// Entry describes a named scheduled job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

type OpOption func(*Cron)

// WithLocation sets the time zone used to interpret specs.
func WithLocation(loc *time.Location) OpOption {
	return func(c *Cron) { c.location = loc }
}

// WithLogger sets the logger for job panics and scheduling messages.
func WithLogger(l log.ILogger) OpOption {
	return func(c *Cron) { c.logger = l }
}

// Cron wraps robfig/cron with named jobs and panic-safe execution.
type Cron struct {
	mu       sync.Mutex
	inner    *robfig.Cron
	location *time.Location
	logger   log.ILogger
	names    map[string]string // job name -> spec
	jobs     map[string]*namedJob
	running  bool
}

type namedJob struct {
	name   string
	job    Job
	logger log.ILogger
}

func (j *namedJob) Run() {
	start := time.Now()
	err := safe.Do(j.job.Run)
	if r := getRecorder(); r != nil {
		r.RecordJobRun(j.name, time.Since(start), err)
	}
	if err != nil {
		j.logger.Errorw("cron job failed", "job", j.name, "error", err)
		return
	}
	j.logger.Debugw("cron job finished", "job", j.name, "elapsed", time.Since(start))
}

// New creates a stopped Cron.
func New(opts ...OpOption) *Cron {
	c := &Cron{
		location: time.Local,
		logger:   log.GetLogger(),
		names:    make(map[string]string),
		jobs:     make(map[string]*namedJob),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.inner = robfig.NewWithLocation(c.location)
	c.inner.ErrorLog = stdlog.New(&errorWriter{logger: c.logger}, "", 0)
	return c
}

// NewWithLocation creates a stopped Cron in loc.
func NewWithLocation(loc *time.Location) *Cron {
	return New(WithLocation(loc))
}

// AddFunc schedules cmd. Specs use six fields (seconds first) or descriptors
// such as "@every 5m".
func (c *Cron) AddFunc(spec string, cmd func(), names ...string) error {
	return c.AddJob(spec, FuncJob(cmd), names...)
}

// AddJob schedules cmd under an optional unique name.
func (c *Cron) AddJob(spec string, cmd Job, names ...string) error {
	if _, err := robfig.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := fmt.Sprintf("job-%d", len(c.names)+1)
	if len(names) > 0 && names[0] != "" {
		name = names[0]
	}
	if _, ok := c.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	nj := &namedJob{name: name, job: cmd, logger: c.logger}
	if err := c.inner.AddJob(spec, nj); err != nil {
		return fmt.Errorf("add cron job %s failed: %w", name, err)
	}
	c.names[name] = spec
	c.jobs[name] = nj
	if r := getRecorder(); r != nil {
		r.UpdateJobsCount(len(c.jobs))
	}
	c.logger.Infow("cron job registered", "job", name, "spec", spec)
	return nil
}

// RunNow runs a named job synchronously, outside its schedule.
func (c *Cron) RunNow(name string) error {
	c.mu.Lock()
	nj, ok := c.jobs[name]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("cron job %s not found", name)
	}
	nj.Run()
	return nil
}

// Entries returns the named entries sorted by next activation.
func (c *Cron) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Entry, 0, len(c.jobs))
	for _, e := range c.inner.Entries() {
		nj, ok := e.Job.(*namedJob)
		if !ok {
			continue
		}
		out = append(out, &Entry{Name: nj.name, Spec: c.names[nj.name], Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].Name < out[j].Name
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

func (c *Cron) Location() *time.Location {
	return c.location
}

func (c *Cron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.inner.Start()
}

func (c *Cron) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.inner.Stop()
}

func (c *Cron) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// errorWriter forwards robfig's scheduler errors to the structured logger.
type errorWriter struct {
	logger log.ILogger
}

func (w *errorWriter) Write(p []byte) (int, error) {
	w.logger.Errorw("cron scheduler error", "detail", string(p))
	return len(p), nil
}
