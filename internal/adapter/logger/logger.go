package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type zapLogger struct {
	log      *zap.Logger
	service  string
	hostname string
}

func New(service string) Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zapcore.DebugLevel,
	)

	hostname, _ := os.Hostname()
	return &zapLogger{
		log:      zap.New(core),
		service:  service,
		hostname: hostname,
	}
}

func (l *zapLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.log.Info(message, l.fields(action, requestID, details)...)
}

func (l *zapLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.log.Debug(message, l.fields(action, requestID, details)...)
}

func (l *zapLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	fields := append(l.fields(action, requestID, details), zap.Error(err))
	l.log.Error(message, fields...)
}

func (l *zapLogger) fields(action, requestID string, details map[string]interface{}) []zap.Field {
	fields := []zap.Field{
		zap.String("service", l.service),
		zap.String("hostname", l.hostname),
		zap.String("action", action),
		zap.String("request_id", requestID),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}
	return fields
}
