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

package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/ensemble/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// Conf Trace 配置
type Conf struct {
	// Enabled 是否启用 trace
	Enabled bool `mapstructure:"enabled"`
	// Endpoint OTLP 端点地址（如：localhost:4318 或 localhost:4317）
	Endpoint string `mapstructure:"endpoint"`
	// Protocol 协议类型：grpc 或 http
	Protocol string `mapstructure:"protocol"`
	// ServiceName 服务名称
	ServiceName string `mapstructure:"serviceName"`
	// ServiceVersion 服务版本
	ServiceVersion string `mapstructure:"serviceVersion"`
	// Insecure 是否使用不安全连接（TLS）
	Insecure bool `mapstructure:"insecure"`
	// Headers 额外的请求头
	Headers map[string]string `mapstructure:"headers"`
	// SampleRatio 采样率，0 或 1 表示全部采样
	SampleRatio float64 `mapstructure:"sampleRatio"`
	// BatchTimeout 批量发送超时时间（秒）
	BatchTimeout int `mapstructure:"batchTimeout"`
	// ExportTimeout 导出超时时间（秒）
	ExportTimeout int `mapstructure:"exportTimeout"`
}

// SetDefaults 设置默认值
func (c *Conf) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "ensemble"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolGRPC
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 5
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = 30
	}
}

// Init installs the global tracer provider. The returned func flushes and
// stops it; with tracing disabled a noop provider is installed.
func Init(cfg Conf) (func(context.Context) error, error) {
	cfg.SetDefaults()

	if !cfg.Enabled || cfg.Endpoint == "" {
		otel.SetTracerProvider(noop.NewTracerProvider())
		log.Info("OpenTelemetry tracing disabled, using noop tracer")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(time.Duration(cfg.BatchTimeout)*time.Second),
			sdktrace.WithExportTimeout(time.Duration(cfg.ExportTimeout)*time.Second),
		),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Infow("OpenTelemetry tracing initialized",
		"protocol", cfg.Protocol,
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
	)
	return tp.Shutdown, nil
}

func newExporter(cfg Conf) (sdktrace.SpanExporter, error) {
	ctx := context.Background()
	switch cfg.Protocol {
	case ProtocolGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		return otlptracegrpc.New(ctx, opts...)
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported trace protocol: %s", cfg.Protocol)
	}
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
