package log

import (
	"context"
	"testing"

	"github.com/pbinitiative/zendcr/internal/appcontext"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLoggingAddsSimulationKey(t *testing.T) {
	// given
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	ctx := appcontext.WithSimulationKey(context.Background(), 7)

	// when
	Infof(ctx, "executed %s", "A")
	Error("plain %d", 1)

	// then
	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "executed A", entries[0].Message)
	assert.Equal(t, int64(7), entries[0].ContextMap()["simulationKey"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Empty(t, entries[1].ContextMap())
}
