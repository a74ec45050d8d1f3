// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

// Package log is the process wide logger used by binaries and the REST layer.
// Library packages take an hclog.Logger instead.
package log

import (
	"context"
	"fmt"
	"sync"

	"github.com/pbinitiative/zendcr/internal/appcontext"
	"github.com/pbinitiative/zendcr/internal/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// Init builds the global logger for the current profile.
func Init() {
	var conf zap.Config
	switch profile.Current {
	case profile.PROD:
		conf = zap.NewProductionConfig()
	case profile.TEST:
		conf = zap.NewDevelopmentConfig()
		conf.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	l, err := conf.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %s", err))
	}
	SetLogger(l)
}

func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l.Sugar()
}

func Logger() *zap.Logger {
	return current().Desugar()
}

func Sync() {
	_ = current().Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func withContext(ctx context.Context) *zap.SugaredLogger {
	l := current()
	if key, ok := appcontext.SimulationKeyFromContext(ctx); ok {
		l = l.With(zap.Int64(string(appcontext.SimulationKey), key))
	}
	return l
}

func Debug(template string, args ...any) { current().Debugf(template, args...) }
func Info(template string, args ...any)  { current().Infof(template, args...) }
func Warn(template string, args ...any)  { current().Warnf(template, args...) }
func Error(template string, args ...any) { current().Errorf(template, args...) }
func Fatal(template string, args ...any) { current().Fatalf(template, args...) }

func Debugf(ctx context.Context, template string, args ...any) {
	withContext(ctx).Debugf(template, args...)
}

func Infof(ctx context.Context, template string, args ...any) {
	withContext(ctx).Infof(template, args...)
}

func Errorf(ctx context.Context, template string, args ...any) {
	withContext(ctx).Errorf(template, args...)
}
