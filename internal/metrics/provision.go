package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de las operaciones del provisioner. Es un proceso batch: en vez de
// exponer /metrics se vuelcan a un archivo para el textfile collector.

// Resultados posibles de una operación.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioner_operations_total",
		Help: "Operaciones ejecutadas por tipo y resultado",
	}, []string{"op", "result"})

	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provisioner_operation_duration_seconds",
		Help:    "Duración de cada operación, incluyendo las llamadas remotas",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"op"})

	LastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "provisioner_last_success_timestamp_seconds",
		Help: "Unix time de la última operación exitosa",
	}, []string{"op"})
)

// Register registra las métricas en el registry dado (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{OperationsTotal, OperationDuration, LastSuccess} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveOperation registra el resultado y la duración de una operación.
func ObserveOperation(op string, err error, d time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	OperationsTotal.WithLabelValues(op, result).Inc()
	OperationDuration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		LastSuccess.WithLabelValues(op).SetToCurrentTime()
	}
}

// WriteTextfile escribe las métricas del gatherer en formato texto (escritura atómica).
// Path vacío no hace nada.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
