package web

import (
	"net/http"
	"time"

	"github.com/projectdiscovery/gologger"

	"github.com/marcuoli/go-subnetscan/pkg/subnetscan"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request at verbose level. A full scan takes
// seconds, so the duration is worth seeing.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		gologger.Verbose().Msgf("%s %s %s %d %v (%s)",
			subnetscan.LogPrefixWeb, r.Method, r.URL.Path, rec.status,
			time.Since(start).Round(time.Millisecond), r.RemoteAddr)
	})
}
