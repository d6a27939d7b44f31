package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；未初始化时为 Nop，测试无需额外准备
var Log = zap.NewNop().Sugar()

// Options 日志输出配置
type Options struct {
	File    string // 日志文件路径，如 "foosball.log"；为空则不写文件
	Level   string // debug / info / warn / error
	Console bool   // 同时输出到 stderr（终端界面模式下应关闭）
}

// Init 初始化 zap 日志到本地文件（支持滚动），可选同时输出到控制台
func Init(opts Options) error {
	level := zapcore.DebugLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return err
		}
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	var cores []zapcore.Core
	if opts.File != "" {
		// 文件滚动策略：10MB 每文件，保留3个备份
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   false,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), level))
	}
	if opts.Console || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// Sync 清理和同步缓冲
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
