package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-epub/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if fields == nil {
		fields = map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "epub.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	// Ensure WithContext/WithFields do not panic.
	ctx := context.Background()
	logger = logger.WithContext(ctx)
	logger = logger.(interfaces.FieldsLogger).WithFields(map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ModuleLogger(provider, packagingModule)

	if len(provider.requested) != 1 || provider.requested[0] != packagingModule {
		t.Fatalf("expected module %s, got %v", packagingModule, provider.requested)
	}

	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}

	if got, ok := rec.fields[0]["module"]; !ok || got != packagingModule {
		t.Fatalf("expected module field %s, got %v", packagingModule, rec.fields[0]["module"])
	}

	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
	if rec.fields[0]["module"] != rootModule {
		t.Fatalf("expected module field %s, got %v", rootModule, rec.fields[0]["module"])
	}
}

func TestAdaptLoggerRequestsAdaptModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = AdaptLogger(provider)
	if len(provider.requested) == 0 || provider.requested[0] != adaptModule {
		t.Fatalf("expected adapt module request, got %v", provider.requested)
	}
}

func TestCollationLoggerRequestsCollationModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = CollationLogger(provider)
	if len(provider.requested) == 0 || provider.requested[0] != collationModule {
		t.Fatalf("expected collation module request, got %v", provider.requested)
	}
}

func TestWithBookContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	_ = WithBookContext(rec, "e78d4f90-e078-49d2-beac-e95e8be70667@3", "", " pack ")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one fields application, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldBookIdent] != "e78d4f90-e078-49d2-beac-e95e8be70667@3" {
		t.Fatalf("unexpected book ident field: %v", fields[fieldBookIdent])
	}
	if _, ok := fields[fieldItemName]; ok {
		t.Fatalf("expected empty item name to be skipped, got %v", fields[fieldItemName])
	}
	if fields[fieldAction] != "pack" {
		t.Fatalf("expected trimmed action, got %v", fields[fieldAction])
	}
}
