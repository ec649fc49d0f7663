package main

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
	"go.uber.org/zap"

	"github.com/zoobzio/mirror"
)

var hookOnce sync.Once

// hookSignals routes monitor signals to log. Hooks are process-wide, so they
// are installed once.
func hookSignals(log *zap.Logger) {
	hookOnce.Do(func() {
		capitan.Hook(mirror.MonitorStarted, func(_ context.Context, e *capitan.Event) {
			path, _ := mirror.KeyPath.From(e)
			interval, _ := mirror.KeyInterval.From(e)
			log.Info("monitoring started", zap.String("path", path), zap.Duration("interval", interval))
		})

		capitan.Hook(mirror.MonitorStopped, func(_ context.Context, e *capitan.Event) {
			path, _ := mirror.KeyPath.From(e)
			state, _ := mirror.KeyState.From(e)
			log.Info("monitoring stopped", zap.String("path", path), zap.String("state", state))
		})

		capitan.Hook(mirror.MonitorStateChanged, func(_ context.Context, e *capitan.Event) {
			oldState, _ := mirror.KeyOldState.From(e)
			newState, _ := mirror.KeyNewState.From(e)
			log.Debug("state changed", zap.String("from", oldState), zap.String("to", newState))
		})

		capitan.Hook(mirror.FileLoaded, func(_ context.Context, e *capitan.Event) {
			log.Info("file loaded", fileFields(e)...)
		})

		capitan.Hook(mirror.FileLoadSkipped, func(_ context.Context, e *capitan.Event) {
			log.Debug("file unchanged", fileFields(e)...)
		})

		capitan.Hook(mirror.FileMissing, func(_ context.Context, e *capitan.Event) {
			path, _ := mirror.KeyPath.From(e)
			log.Info("file missing, using defaults", zap.String("path", path))
		})

		capitan.Hook(mirror.FileSaved, func(_ context.Context, e *capitan.Event) {
			log.Info("file saved", fileFields(e)...)
		})

		capitan.Hook(mirror.FileLoadFailed, func(_ context.Context, e *capitan.Event) {
			path, _ := mirror.KeyPath.From(e)
			errMsg, _ := mirror.KeyError.From(e)
			log.Error("load failed", zap.String("path", path), zap.String("error", errMsg))
		})

		capitan.Hook(mirror.FileSaveFailed, func(_ context.Context, e *capitan.Event) {
			path, _ := mirror.KeyPath.From(e)
			errMsg, _ := mirror.KeyError.From(e)
			log.Error("save failed", zap.String("path", path), zap.String("error", errMsg))
		})
	})
}

func fileFields(e *capitan.Event) []zap.Field {
	path, _ := mirror.KeyPath.From(e)
	fields := []zap.Field{zap.String("path", path)}
	if mod, ok := mirror.KeyModTime.From(e); ok {
		fields = append(fields, zap.String("mod_time", mod))
	}
	if size, ok := mirror.KeySize.From(e); ok {
		fields = append(fields, zap.Int("size", size))
	}
	if ct, ok := mirror.KeyContentType.From(e); ok {
		fields = append(fields, zap.String("content_type", ct))
	}
	return fields
}
