package app

import (
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-activator/metrics"
)

var logLevelCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "activator",
	Name:      "log_entries",
	Help:      "Number of warn and error level log entries",
}, []string{"level"})

func init() {
	logLevelCounter = metrics.Register(logLevelCounter).(*prometheus.CounterVec)
}

// levelCounterHook counts warnings and errors so they can be alerted on.
type levelCounterHook struct{}

func (levelCounterHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.FatalLevel,
		logrus.PanicLevel,
	}
}

func (levelCounterHook) Fire(e *logrus.Entry) error {
	logLevelCounter.WithLabelValues(e.Level.String()).Inc()
	return nil
}

func configureLogger(logger *logrus.Logger, config BaseConfig) {
	switch strings.ToLower(config.LogType) {
	case "human":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.WithField("log_type", config.LogType).Warn("unknown log type, using json")
	}

	if level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel)); err != nil {
		logger.WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logger.SetLevel(level)
	}

	logger.SetOutput(os.Stdout)
	logger.AddHook(levelCounterHook{})
}
