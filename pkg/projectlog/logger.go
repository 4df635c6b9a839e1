package projectlog

import (
	"os"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/sirupsen/logrus"
)

func Init() {
	logrus.SetFormatter(&JSONFormatter{})
	level := logrus.Level(config.GetInstance().GetIntOrDefault(config.AppLogLevel, int(logrus.InfoLevel)))
	logrus.SetLevel(level)
	rc := config.GetInstance().GetBool(config.AppLogReportcaller)
	logrus.SetReportCaller(rc)
	logrus.SetOutput(os.Stdout)
}
