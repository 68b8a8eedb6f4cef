package urlmanager

import (
	"github.com/rs/zerolog"
)

// logger is shared by clients and managers that were not given their own.
// It discards everything until SetLogger is called.
var logger = zerolog.Nop()

// SetLogger replaces the package logger. Call it before creating clients or
// managers; it is not synchronized with running requests.
func SetLogger(l zerolog.Logger) {
	logger = l
}
