package trace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/resend-community/go-client/pkg/request"
)

type logTrace struct {
	ClientTrace
	wr        io.Writer
	requestID uint64
	method    string
	url       string
}

// LogTracer writes one line for each stage of a request to the writer.
// Headers and bodies are not logged, so the output is safe to use in production.
func LogTracer(wr io.Writer) Factory {
	var idGenerator uint64
	return func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *ClientTrace) {
		t := &logTrace{
			wr:        wr,
			requestID: atomic.AddUint64(&idGenerator, 1),
			method:    reqDef.Method(),
			url:       reqDef.Path(),
		}

		var connStartTime, startTime, doneTime time.Time
		t.ConnectStart = func(_, _ string) {
			connStartTime = time.Now()
		}
		t.GotConn = func(info httptrace.GotConnInfo) {
			var infoStr string
			switch {
			case info.Reused && info.WasIdle:
				infoStr = fmt.Sprintf("reused conn (was idle=%s)", info.IdleTime)
			case info.Reused:
				infoStr = "reused conn"
			default:
				infoStr = fmt.Sprintf("new conn | %s", time.Since(connStartTime))
			}
			t.log("CONN ", infoStr)
		}
		t.HTTPRequestStart = func(r *http.Request) {
			t.method = r.Method
			t.url = r.URL.String()
			startTime = time.Now()
			t.log("START")
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			doneTime = time.Now()
			if err != nil {
				t.log("DONE ", fmt.Sprintf("%s | error=%s", doneTime.Sub(startTime), err))
				return
			}
			t.log("DONE ", fmt.Sprintf("%d | %s", r.StatusCode, doneTime.Sub(startTime)))
		}
		t.BodyParseDone = func(_ *http.Response, readBytes int64, _ any, _ error) {
			t.log("BODY ", fmt.Sprintf("%d B | %s", readBytes, time.Since(doneTime)))
		}
		t.RequestProcessed = func(_ any, err error) {
			if err != nil {
				t.log("END  ", fmt.Sprintf("%s | error=%s", request.OutcomeOf(err), err))
				return
			}
			t.log("END  ", request.OutcomeOf(err).String())
		}
		return ctx, &t.ClientTrace
	}
}

func (t *logTrace) log(stage string, details ...string) {
	line := fmt.Sprintf(`HTTP_REQUEST[%04d] %s %s "%s"`, t.requestID, stage, t.method, t.url)
	for _, d := range details {
		line += " | " + d
	}
	_, _ = fmt.Fprintln(t.wr, line)
}
