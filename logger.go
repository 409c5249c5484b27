package main

import (
	"os"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog zerolog.Logger
	updateLog zerolog.Logger
}

func (l *logger) LookupError(address, name string, err error) {
	if name == "" {
		l.lookupLog.Warn().Str("address", address).Err(err).Msg("")

		return
	}

	l.lookupLog.Error().Str("dataset", name).Str("address", address).Err(err).Msg("")
}

func (l *logger) UpdateInfo(name, msg string) {
	l.updateLog.Info().Str("dataset", name).Msg(msg)
}

func (l *logger) UpdateError(name string, err error) {
	l.updateLog.Error().Str("dataset", name).Err(err).Msg("")
}

func newEventLogger(eventName string, level zerolog.Level) zerolog.Logger {
	return zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("event_name", eventName).
		Logger()
}

func newLogger(debug bool) (geolib.Logger, zerolog.Logger) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &logger{
		lookupLog: newEventLogger("lookup", level),
		updateLog: newEventLogger("update", level),
	}, newEventLogger("app", level)
}
