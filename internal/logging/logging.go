// Package logging constructs the process logger.
package logging

import (
	"go.uber.org/zap"
)

// New creates a zap logger for the given environment: JSON output in
// production, human-readable console output otherwise.
func New(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
