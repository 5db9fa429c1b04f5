// Package testhelpers provides shared fixtures for package tests.
package testhelpers

import (
	"github.com/vigiasalud/alert-ingestor/internal/logger"
)

// NewTestLogger returns a logger that discards output.
func NewTestLogger() logger.Logger {
	return logger.NewNopLogger()
}
