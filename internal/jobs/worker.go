package jobs

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewServer builds the asynq consumer. Internal retry policies make
// redeliveries unwanted, so the error handler only logs.
func NewServer(redisAddr string, concurrency int, log *zap.Logger) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
			Logger:      &asynqLogger{l: log.Sugar()},
		},
	)
}

// NewMux registers the orchestrator's handlers for every task type.
func NewMux(o *Orchestrator) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAnalyzeResume, o.HandleAnalyze)
	mux.HandleFunc(TypeExtractResume, o.HandleExtract)
	mux.HandleFunc(TypeUploadResume, o.HandleUpload)
	return mux
}

// asynqLogger adapts zap to asynq's logger interface.
type asynqLogger struct {
	l *zap.SugaredLogger
}

func (a *asynqLogger) Debug(args ...interface{}) { a.l.Debug(args...) }
func (a *asynqLogger) Info(args ...interface{})  { a.l.Info(args...) }
func (a *asynqLogger) Warn(args ...interface{})  { a.l.Warn(args...) }
func (a *asynqLogger) Error(args ...interface{}) { a.l.Error(args...) }
func (a *asynqLogger) Fatal(args ...interface{}) { a.l.Fatal(args...) }
