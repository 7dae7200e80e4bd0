package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"cookbook/auth"
	"cookbook/utils"
)

const maxBodyBytes = 1 << 20

// RequirePassword guards a mutating route. The password travels in the JSON
// body alongside the payload, so the body is buffered, checked, and handed
// back to the next handler intact.
func RequirePassword(gate *auth.Gate, log *zap.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		r.Body.Close()
		if err != nil {
			utils.WriteEnvelope(w, http.StatusBadRequest, "Could not read request body", nil)
			return
		}

		var creds struct {
			Password string `json:"password"`
		}
		if err := json.Unmarshal(body, &creds); err != nil {
			utils.WriteEnvelope(w, http.StatusBadRequest, "Could not parse request body", nil)
			return
		}
		if creds.Password == "" {
			utils.WriteEnvelope(w, http.StatusUnauthorized, "Authentication needed", nil)
			return
		}

		ok, err := gate.Verify(r.Context(), creds.Password)
		if err != nil {
			log.Error("password verification unavailable", zap.Error(err))
			utils.WriteEnvelope(w, http.StatusInternalServerError, "Could not verify password", nil)
			return
		}
		if !ok {
			utils.WriteEnvelope(w, http.StatusUnauthorized, "Password is incorrect", nil)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next(w, r, ps)
	}
}

// RequestLogger logs method, path, remote address, and duration for every
// request, tagging each with a request ID that is also echoed to the client.
func RequestLogger(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request",
			zap.String("requestId", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// SecurityHeaders applies a set of recommended HTTP security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}
