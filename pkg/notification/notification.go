package notification

import (
	"time"
)

type Sender interface {
	CanSend() bool
	Send(title string, description string, runTime time.Duration, fields []Field, dryRun bool) error
	BuildField(target string, source string, size int64) Field
	Name() string
}

type Field struct {
	Name  string
	Value string
}
