package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/metrics"
)

// PanicRecovery turns a handler panic into a 500. The panic is logged with
// the request owner, counted, and sent to sentry when a client is configured.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				ownerID := auth.OwnerFromContext(r.Context())
				log.WithFields(log.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"owner":  ownerID,
				}).Errorf("panic serving request: %v\n%s", recovered, debug.Stack())

				if hub := sentry.CurrentHub(); hub.Client() != nil {
					hub.Recover(recovered)
				}
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
