package apm

import "testing"

func TestParseProvider(t *testing.T) {
	tests := []struct {
		exporter string
		endpoint string
		want     Provider
	}{
		{"zipkin", "http://localhost:9411/api/v2/spans", ZipkinProvider},
		{"otlp", "http://localhost:4318", OTLPHTTPProvider},
		{"otlp", "localhost:4317", OTLPGRPCProvider},
		{"OTLP-GRPC", "", OTLPGRPCProvider},
		{"stdout", "", ConsoleProvider},
		{"", "", EmptyProvider},
		{"jaeger", "", EmptyProvider},
	}

	for _, tt := range tests {
		t.Run(tt.exporter+"_"+tt.endpoint, func(t *testing.T) {
			if got := ParseProvider(tt.exporter, tt.endpoint); got != tt.want {
				t.Errorf("ParseProvider(%q, %q) = %q, want %q", tt.exporter, tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestNewTraceProviderEmpty(t *testing.T) {
	tp := NewTraceProvider(useEmpty(), WithServiceName("test"))
	if _, ok := tp.(emptyTraceProvider); !ok {
		t.Fatalf("NewTraceProvider() = %T, want emptyTraceProvider", tp)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop() = %v, want nil", err)
	}
}

func TestWithScheme(t *testing.T) {
	if got := withScheme("collector:4317"); got != "http://collector:4317" {
		t.Errorf("withScheme() = %q", got)
	}
	if got := withScheme("https://collector:4317"); got != "https://collector:4317" {
		t.Errorf("withScheme() = %q", got)
	}
}
