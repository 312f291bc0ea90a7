// Package logging constructs the service logger with a zap sink.
package logging

import (
	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
)

// New builds the service logger. Pretty output uses zap's development
// encoder; production output is JSON.
func New(pretty bool) (ectologger.Logger, func(), error) {
	var zl *zap.Logger
	var err error
	if pretty {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}

	sink := func(msg ectologger.EctoLogMessage) {
		zl.Info("log", zap.Any("entry", msg))
	}

	flush := func() { _ = zl.Sync() }
	return ectologger.NewEctoLogger(sink), flush, nil
}
