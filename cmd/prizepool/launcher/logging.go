package launcher

import (
	"github.com/evalphobia/logrus_sentry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"
)

var verbosityLevels = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// setupLogging builds the command's logger from the global flags. When a
// Sentry DSN is configured, errors and worse are mirrored there.
func setupLogging(ctx *cli.Context) (*logrus.Logger, error) {
	log := logrus.New()

	verbosity := ctx.GlobalInt("log.verbosity")
	if verbosity < 0 || verbosity >= len(verbosityLevels) {
		return nil, errors.Errorf("log verbosity %d outside [0, %d]", verbosity, len(verbosityLevels)-1)
	}
	log.SetLevel(verbosityLevels[verbosity])

	switch format := ctx.GlobalString("log.format"); format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors: ctx.GlobalBool("log.color"),
		})
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}

	if dsn := ctx.GlobalString("sentry.dsn"); dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to set up sentry reporting")
		}
		log.AddHook(hook)
	}

	return log, nil
}
