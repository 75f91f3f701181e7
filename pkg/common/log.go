package common

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetLogLevel sets the level of the standard logger. Trace and panic levels
// are not used.
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info", "":
		log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "fatal":
		log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}
