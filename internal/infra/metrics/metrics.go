package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ReminderRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reminder_run_seconds",
		Help:    "Doba běhu připomínkové úlohy",
		Buckets: prometheus.DefBuckets,
	})
	ReminderSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_send_errors_total",
		Help: "Chyby při odesílání připomínek",
	})
	RemindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Počet odeslaných připomínek",
	})
	MenuFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_fetch_total",
		Help: "Výsledky stahování jídelníčku",
	}, []string{"result"})
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Počet uložených objednávek",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Délka síťových požadavků",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Počet síťových požadavků",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister registruje metriky.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ReminderRunSeconds,
		ReminderSendErrors,
		RemindersSent,
		MenuFetchTotal,
		OrdersPlaced,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer spouští HTTP server s endpointem /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown selhal")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server spuštěn")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server zastaven")
		}
		cancel()
	}()
}

// ObserveNetworkRequest zaznamenává délku a status síťového požadavku.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveMenuFetch zaznamenává výsledek stažení jídelníčku.
func ObserveMenuFetch(result string) {
	MenuFetchTotal.WithLabelValues(result).Inc()
}
