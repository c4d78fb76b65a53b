package logger

import (
	"os"
	"path/filepath"
	"time"

	"roversign-go/internal/config"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建zap日志器：按天切割的文件输出 + 控制台输出
func New(cfg *config.LogConfig) (*zap.Logger, error) {
	writer, err := rotatelogs.New(
		filepath.Join(cfg.Dir, "roversign-%Y-%m-%d.log"),
		rotatelogs.WithLinkName(filepath.Join(cfg.Dir, "roversign.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(cfg.MaxDays)*24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(writer), zap.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zap.InfoLevel),
	)

	return zap.New(core, zap.AddCaller()), nil
}
