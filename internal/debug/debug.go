package debug

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// GetLogger returns a singleton logger writing to a file. The TUI owns
// stdout, so all diagnostics go to the file sink.
func GetLogger() *zap.SugaredLogger {
	once.Do(func() {
		path := filepath.Join(os.TempDir(), "hubchat-debug.log")
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			panic(err)
		}
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		)
		logger = zap.New(core, zap.AddCaller()).Sugar()
	})
	return logger
}
