package logger

import (
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
	"go.uber.org/zap"
)

var _ wailslogger.Logger = WailsLogger{}

// WailsLogger routes the desktop runtime's own log lines into zap. It
// satisfies the wails pkg/logger.Logger interface.
type WailsLogger struct {
	L *zap.Logger
}

func (w WailsLogger) Print(message string)   { w.L.Info(message) }
func (w WailsLogger) Trace(message string)   { w.L.Debug(message) }
func (w WailsLogger) Debug(message string)   { w.L.Debug(message) }
func (w WailsLogger) Info(message string)    { w.L.Info(message) }
func (w WailsLogger) Warning(message string) { w.L.Warn(message) }
func (w WailsLogger) Error(message string)   { w.L.Error(message) }

// Fatal logs at error level; the runtime exits on its own after a fatal
// message, so zap must not.
func (w WailsLogger) Fatal(message string) { w.L.Error(message) }
