package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetGlobalLogger() {
	globalLogger = nil
	once = sync.Once{}
}

func TestInitGlobalLogger(t *testing.T) {
	resetGlobalLogger()

	InitGlobalLogger(nil)

	assert.NotNil(t, globalLogger)
	assert.Equal(t, "paywire", globalLogger.service)
	assert.Equal(t, "1.0.0", globalLogger.version)
}

func TestGetGlobalLogger(t *testing.T) {
	resetGlobalLogger()

	// Getting the logger before initialization falls back to console-only.
	logger := GetGlobalLogger()
	assert.NotNil(t, logger)
	assert.Equal(t, "paywire", logger.service)
	assert.False(t, logger.enableOpenSearch)
}

func TestGlobalLoggerConvenienceFunctions(t *testing.T) {
	resetGlobalLogger()

	// Console disabled to avoid output during tests.
	InitGlobalLogger(nil)
	globalLogger.enableConsole = false

	Debug("Debug message")
	Info("Info message")
	Warn("Warning message")
	Error("Error message", nil)

	ctx := LogContext{TenantID: "APP1"}
	Debug("Debug with context", ctx)
	Info("Info with context", ctx)
	Warn("Warning with context", ctx)
	Error("Error with context", nil, ctx)
}

func TestWithContext(t *testing.T) {
	resetGlobalLogger()
	InitGlobalLogger(nil)

	ctx := LogContext{
		TenantID: "APP1",
		Provider: "payflow",
	}

	contextLogger := WithContext(ctx)
	assert.NotNil(t, contextLogger)
	assert.Equal(t, "APP1", contextLogger.context.TenantID)
	assert.Equal(t, "payflow", contextLogger.context.Provider)
}

func TestWithTenant(t *testing.T) {
	resetGlobalLogger()
	InitGlobalLogger(nil)

	contextLogger := WithTenant("APP1")
	assert.NotNil(t, contextLogger)
	assert.Equal(t, "APP1", contextLogger.context.TenantID)
}

func TestWithProvider(t *testing.T) {
	resetGlobalLogger()
	InitGlobalLogger(nil)

	contextLogger := WithProvider("securenet")
	assert.NotNil(t, contextLogger)
	assert.Equal(t, "securenet", contextLogger.context.Provider)
}

func TestWithTenantAndProvider(t *testing.T) {
	resetGlobalLogger()
	InitGlobalLogger(nil)

	contextLogger := WithTenantAndProvider("APP1", "payflow")
	assert.NotNil(t, contextLogger)
	assert.Equal(t, "APP1", contextLogger.context.TenantID)
	assert.Equal(t, "payflow", contextLogger.context.Provider)
}

func TestInitGlobalLogger_OnlyOnce(t *testing.T) {
	resetGlobalLogger()

	InitGlobalLogger(nil)
	firstLogger := globalLogger

	InitGlobalLogger(nil)
	secondLogger := globalLogger

	// Same instance because of sync.Once.
	assert.Equal(t, firstLogger, secondLogger)
}
