package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init 统一使用 JSON 输出到 stdout，dev 环境保留文本格式便于本地阅读
func Init(env, level string) {
	logrus.SetOutput(os.Stdout)
	if env == "dev" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	logrus.WithField("env", env).Info("logger initialized")
}
