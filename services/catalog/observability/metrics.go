// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the catalog
// service. Metrics are registered on the default registry via promauto
// and served by the /metrics route.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_store_operations_total",
		Help: "Store operations by collection and operation",
	}, []string{"collection", "operation"})

	cascadeDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cascade_deletes_total",
		Help: "Cascading deletes by root entity kind and outcome",
	}, []string{"kind", "status"})

	cascadeDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_cascade_duration_seconds",
		Help:    "Wall time of cascading deletes",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"kind"})

	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_admin_login_attempts_total",
		Help: "Admin login attempts by outcome",
	}, []string{"status"})
)

// RecordStoreOp counts one store operation.
func RecordStoreOp(collection, operation string) {
	storeOpsTotal.WithLabelValues(collection, operation).Inc()
}

// RecordCascade counts one cascading delete and observes its duration.
// status is "completed", "missing" (root did not exist) or "error".
func RecordCascade(kind, status string, elapsed time.Duration) {
	cascadeDeletesTotal.WithLabelValues(kind, status).Inc()
	cascadeDurationSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordLogin counts one admin login attempt.
// status is "success" or "failure".
func RecordLogin(status string) {
	loginAttemptsTotal.WithLabelValues(status).Inc()
}
