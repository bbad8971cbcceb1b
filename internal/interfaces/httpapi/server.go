package httpapi

import (
	"net/http"
	"runtime/debug"

	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
)

var routeGroups = []func(*http.ServeMux, *Handler){
	registerSystemRoutes,
	registerCompetitionRoutes,
	registerRosterRoutes,
	registerMatchRoutes,
}

// NewRouter wires every route group behind, from outermost: tracing, request
// logging, CORS and panic recovery.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	for _, register := range routeGroups {
		register(mux, handler)
	}

	var h http.Handler = mux
	h = recoverPanic(logger, h)
	h = CORS(corsAllowedOrigins, h)
	h = RequestLogging(logger, h)
	return RequestTracing(h)
}

// recoverPanic answers a handler panic with the 500 envelope.
// http.ErrAbortHandler is re-raised so the server aborts the response.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(ctx, "panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			writeInternalError(ctx, w)
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
