package trace

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/resend-community/go-client/pkg/request"
)

// ZapTracer logs the request lifecycle as structured records.
// HTTP attempts are logged at the debug level, the processed request at the info level,
// failed requests at the warn level. Headers and bodies are never logged.
func ZapTracer(logger *zap.Logger) Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *ClientTrace) {
		startTime := time.Now()
		log := logger.With(zap.String("http.method", reqDef.Method()), zap.String("http.path", reqDef.Path()))

		var statusCode int
		var readBytes int64
		var httpStartTime time.Time
		t := &ClientTrace{}
		t.HTTPRequestStart = func(r *http.Request) {
			httpStartTime = time.Now()
			log.Debug("http request started", zap.String("http.url", r.URL.String()))
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			fields := []zapcore.Field{zap.Duration("duration", time.Since(httpStartTime))}
			if err != nil {
				fields = append(fields, zap.Error(err))
			} else {
				statusCode = r.StatusCode
				fields = append(fields, zap.Int("http.status_code", statusCode))
			}
			log.Debug("http request done", fields...)
		}
		t.BodyParseDone = func(_ *http.Response, n int64, _ any, _ error) {
			readBytes = n
		}
		t.RequestProcessed = func(_ any, err error) {
			fields := []zapcore.Field{
				zap.String("api.outcome", request.OutcomeOf(err).String()),
				zap.Int("http.status_code", statusCode),
				zap.Int64("http.read_bytes", readBytes),
				zap.Duration("duration", time.Since(startTime)),
			}
			if err != nil {
				log.Warn("request failed", append(fields, zap.Error(err))...)
				return
			}
			log.Info("request processed", fields...)
		}
		return ctx, t
	}
}
