package clientstate

import (
	"context"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a shopper-facing message about the outcome of an action.
type Notification struct {
	Level   Level
	Message string
	Code    pkgerrors.Code
}

// Notifier delivers notifications to whatever surface the shopper sees.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *logger.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	if l.Logger == nil {
		return
	}
	ctx = l.Logger.WithFields(ctx, map[string]any{"notification": string(n.Level), "error_code": string(n.Code)})
	switch n.Level {
	case LevelError, LevelWarning:
		l.Logger.Warn(ctx, n.Message)
	default:
		l.Logger.Info(ctx, n.Message)
	}
}

// userMessage picks the text shown for a failed action.
func userMessage(action string, err error) string {
	code := pkgerrors.CodeOf(err)
	msg := pkgerrors.MetadataFor(code).PublicMessage
	switch code {
	case pkgerrors.CodeValidation, pkgerrors.CodeUnauthorized, pkgerrors.CodeForbidden,
		pkgerrors.CodeNotFound, pkgerrors.CodeConflict:
		if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
			msg = typed.Message()
		}
	}
	if action == "" {
		return msg
	}
	return "Could not " + action + ": " + msg
}
