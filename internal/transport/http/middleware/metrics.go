package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Observer — приёмник длительности HTTP-запросов (metrics.Metrics).
type Observer interface {
	ObserveHTTP(method, route, status string, seconds float64)
}

// Metrics пишет длительность запроса. Метка route — шаблон маршрута chi, не сырой путь.
func Metrics(obs Observer) Middleware {
	return func(next http.Handler) http.Handler {
		if obs == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}

			obs.ObserveHTTP(r.Method, route, strconv.Itoa(sw.code()), time.Since(start).Seconds())
		})
	}
}
