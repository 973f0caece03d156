package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

func InitLogger(production bool) error {
	var config zap.Config

	if production {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var err error
	Logger, err = config.Build()
	if err != nil {
		return err
	}
	return nil
}

// Sugar devuelve el logger azucarado; si InitLogger no corrió todavía
// (tests) usa un no-op para no panicear.
func Sugar() *zap.SugaredLogger {
	if Logger == nil {
		return zap.NewNop().Sugar()
	}
	return Logger.Sugar()
}
