package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *zap.Logger

// InitLogger sets up the global JSON logger. Entries go to a rotated file;
// setting LOG_STDOUT=1 tees them to stdout for local development.
func InitLogger() {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   "./logs/waterbuddy.log",
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	core := zapcore.NewCore(encoder, writer, zap.InfoLevel)
	if os.Getenv("LOG_STDOUT") != "" {
		core = zapcore.NewTee(core,
			zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.InfoLevel))
	}
	Logger = zap.New(core, zap.AddCaller())
}
