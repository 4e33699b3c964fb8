package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process-wide zap logger. APP_ENV=development switches to
// the human-readable console encoder.
func New() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
