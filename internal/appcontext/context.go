package appcontext

import (
	"context"
)

type EXECUTION_CONTEXT string

var (
	SimulationKey EXECUTION_CONTEXT = "simulationKey"
)

func WithSimulationKey(ctx context.Context, key int64) context.Context {
	return context.WithValue(ctx, SimulationKey, key)
}

func SimulationKeyFromContext(ctx context.Context) (int64, bool) {
	key, ok := ctx.Value(SimulationKey).(int64)
	return key, ok
}
