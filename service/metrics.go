package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamdb_queries_total",
			Help: "Queries executed, by database and strategy",
		},
		[]string{"database", "strategy"},
	)

	RecordsInsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamdb_records_inserted_total",
			Help: "Records added through the service",
		},
		[]string{"database"},
	)

	RecordsDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamdb_records_deleted_total",
			Help: "Records removed through the service",
		},
		[]string{"database"},
	)

	Databases = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "steamdb_databases",
			Help: "Databases currently registered",
		},
	)
)
