package apm

import (
	"context"
	"strings"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "stdout"
	EmptyProvider    Provider = "none"
)

// ParseProvider maps the telemetry.exporter setting to a Provider. "otlp"
// picks HTTP for http(s) endpoints and gRPC otherwise.
func ParseProvider(exporter, endpoint string) Provider {
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case "zipkin":
		return ZipkinProvider
	case "otlp":
		if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
			return OTLPHTTPProvider
		}
		return OTLPGRPCProvider
	case "otlp-grpc", "grpc":
		return OTLPGRPCProvider
	case "otlp-http", "http":
		return OTLPHTTPProvider
	case "stdout", "console":
		return ConsoleProvider
	default:
		return EmptyProvider
	}
}

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	serviceName        string
	useEmpty           bool
}

type TracerOption func(*TracerOptions)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) TracerOption {
	return func(option *TracerOptions) {
		option.serviceName = name
	}
}

// WithProvider selects the span exporter. Exporter construction failures fall
// back to the empty provider so tracing never blocks startup.
func WithProvider(provider Provider, endpoint string, log logger.LoggerInterface) TracerOption {
	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch provider {
	case ZipkinProvider:
		exp, err = zipkin.New(endpoint)
	case OTLPGRPCProvider:
		exp, err = otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpointURL(withScheme(endpoint)),
			otlptracegrpc.WithInsecure(),
		)
	case OTLPHTTPProvider:
		exp, err = otlptracehttp.New(context.Background(), otlptracehttp.WithEndpointURL(endpoint))
	case ConsoleProvider:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return useEmpty()
	}

	if err != nil {
		log.Error(context.Background(), "trace exporter init failed, tracing disabled",
			"provider", string(provider), "error", err)
		return useEmpty()
	}

	return func(option *TracerOptions) {
		option.exporter = exp
		option.tracerProviderName = string(provider)
	}
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

func withScheme(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "http://" + endpoint
}

func NewTraceProvider(options ...TracerOption) TraceProvider {
	opts := &TracerOptions{}

	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty || opts.exporter == nil {
		return emptyTraceProvider{}
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{
		tp,
	}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
