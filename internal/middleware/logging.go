package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log.Tracef(" ====> request [%s] path: [%s] [req-id: %s]",
				r.Method, r.URL.Path, r.Header.Get("X-Request-ID"))

			next.ServeHTTP(w, r)

			log.Tracef(" <==== done [%s] path: [%s] in %s",
				r.Method, r.URL.Path, time.Since(start))
		})
	}
}
