package logging

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var level atomic.Uint32

func init() {
	level.Store(uint32(logrus.InfoLevel))
}

// SetLevel задает уровень для всех логгеров, созданных после вызова
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	level.Store(uint32(lvl))
	logrus.SetLevel(lvl)
	return nil
}

// New создает логгер компонента с общим форматом
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.Level(level.Load()))
	return logger
}
