package display

import (
	"go.uber.org/zap"
)

// LogNotifier forwards display events to a zap logger. Daemons use it in place of a screen.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("display")}
}

// Info logs an informational notice
func (n *LogNotifier) Info(text string) {
	n.logger.Info(text, zap.String("kind", KindInfo.String()))
}

// Warning logs a warning notice
func (n *LogNotifier) Warning(text string) {
	n.logger.Warn(text, zap.String("kind", KindWarning.String()))
}

// Error logs an error notice
func (n *LogNotifier) Error(text string) {
	n.logger.Error(text, zap.String("kind", KindError.String()))
}

// Success logs a success notice
func (n *LogNotifier) Success(text string) {
	n.logger.Info(text, zap.String("kind", KindSuccess.String()))
}

// Field logs a labeled value
func (n *LogNotifier) Field(label, value string) {
	n.logger.Info("field",
		zap.String("kind", KindField.String()),
		zap.String("label", label),
		zap.String("value", value))
}
