package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"lendgate/pkg/requestcontext"
)

// RequestID assigns a correlation ID to every request and echoes it in the
// response so applicants can quote it when disputing a decision. An inbound
// X-Request-ID is honored to preserve upstream correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientInfo parses the caller's User-Agent into a compact descriptor for the
// audit trail. Unparsable agents degrade to the raw header value.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.UserAgent()
		client := raw
		if raw != "" {
			ua := useragent.New(raw)
			if name, version := ua.Browser(); name != "" {
				client = name + "/" + version + " (" + ua.OS() + ")"
			}
		}

		ctx := requestcontext.WithClient(r.Context(), client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
