package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-epub/pkg/interfaces"
)

const (
	rootModule      = "epub"
	packagingModule = "epub.packaging"
	adaptModule     = "epub.adapt"
	collationModule = "epub.collation"
	libraryModule   = "epub.library"
	ingestModule    = "epub.ingest"
)

const (
	fieldBookIdent = "book_ident"
	fieldItemName  = "item_name"
	fieldAction    = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PackagingLogger returns the logger namespace reserved for the EPUB reader/writer.
func PackagingLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, packagingModule)
}

// AdaptLogger returns the logger namespace reserved for the model adapters.
func AdaptLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, adaptModule)
}

// CollationLogger returns the logger namespace reserved for the collation pipeline.
func CollationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, collationModule)
}

// LibraryLogger returns the logger namespace reserved for archive storage.
func LibraryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, libraryModule)
}

// IngestLogger returns the logger namespace reserved for markdown ingestion.
func IngestLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ingestModule)
}

// WithBookContext enriches the provided logger with common book fields such as
// the ident-hash, the package item in flight, and the current action. Empty
// values are ignored.
func WithBookContext(logger interfaces.Logger, identHash, item, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(identHash); trimmed != "" {
		fields[fieldBookIdent] = trimmed
	}
	if trimmed := strings.TrimSpace(item); trimmed != "" {
		fields[fieldItemName] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
