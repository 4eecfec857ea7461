package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// AppName names the root logger.
const AppName = "reportpress"

// LoggerConfig configures one log sink. Level is a zap level name or "off".
type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=off debug info warn error"`
	Destination string `yaml:"destination,omitempty" validate:"omitempty,filepath"`
}

// LoggingConfig holds the console (stderr) and file sinks.
type LoggingConfig struct {
	Console LoggerConfig `yaml:"console"`
	File    LoggerConfig `yaml:"file"`
}

func (lc LoggerConfig) enabled() (zapcore.Level, bool, error) {
	if lc.Level == "" || lc.Level == "off" {
		return zapcore.InvalidLevel, false, nil
	}
	lvl, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return zapcore.InvalidLevel, false, fmt.Errorf("无效日志级别 %q: %w", lc.Level, err)
	}
	return lvl, true, nil
}

// Prepare builds the program logger. Disabled sinks are skipped; with both
// off the logger discards everything.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	var cores []zapcore.Core

	lvl, on, err := conf.Console.enabled()
	if err != nil {
		return nil, err
	}
	if on {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		// 终端上着色并省略时间
		if term.IsTerminal(int(os.Stderr.Fd())) {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
			ec.TimeKey = zapcore.OmitKey
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), lvl))
	}

	lvl, on, err = conf.File.enabled()
	if err != nil {
		return nil, err
	}
	if on {
		if conf.File.Destination == "" {
			return nil, fmt.Errorf("文件日志缺少 destination")
		}
		// 每次运行重写日志文件
		f, err := os.Create(conf.File.Destination)
		if err != nil {
			return nil, fmt.Errorf("无法打开日志文件 %s: %w", conf.File.Destination, err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(f), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(AppName), nil
}
