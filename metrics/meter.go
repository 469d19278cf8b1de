// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package metrics exposes Prometheus instrumentation for gas metering, the
// same registry-and-collector pattern the teacher wires its own node
// metrics through (cmd/kcn's prometheus exporter), applied here to the one
// quantity TempStore's execution loop produces per transaction: gas cost.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/movevm/tempstore/gas"
)

var (
	computationCost = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tempstore",
		Subsystem: "gas",
		Name:      "computation_cost",
		Help:      "Computation gas charged per transaction.",
		Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
	})
	storageCost = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tempstore",
		Subsystem: "gas",
		Name:      "storage_cost",
		Help:      "Storage gas charged per transaction.",
		Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
	})
	storageRebate = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tempstore",
		Subsystem: "gas",
		Name:      "storage_rebate",
		Help:      "Storage rebate credited per transaction.",
		Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
	})
	outOfGasTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tempstore",
		Subsystem: "gas",
		Name:      "out_of_gas_total",
		Help:      "Number of storage-charging attempts that ran out of gas.",
	})
)

func init() {
	prometheus.MustRegister(computationCost, storageCost, storageRebate, outOfGasTotal)
}

// ObserveSummary records one finalised gas.GasCostSummary's components.
func ObserveSummary(summary gas.GasCostSummary) {
	computationCost.Observe(float64(summary.ComputationCost))
	storageCost.Observe(float64(summary.StorageCost))
	storageRebate.Observe(float64(summary.StorageRebate))
}

// InstrumentedMeter decorates a gas.Meter, counting every failed storage or
// computation charge as an out-of-gas occurrence. It observes no summaries
// itself, on reset or otherwise; callers record the final summary with
// ObserveSummary.
type InstrumentedMeter struct {
	gas.Meter
}

// Wrap returns a gas.Meter that instruments inner with Prometheus metrics.
func Wrap(inner gas.Meter) *InstrumentedMeter {
	return &InstrumentedMeter{Meter: inner}
}

// ChargeStorageMutation instruments the wrapped meter, counting failures as
// out-of-gas events.
func (m *InstrumentedMeter) ChargeStorageMutation(newSize, priorRebate uint64) (uint64, error) {
	rebate, err := m.Meter.ChargeStorageMutation(newSize, priorRebate)
	if err != nil {
		outOfGasTotal.Inc()
	}
	return rebate, err
}

// ChargeComputationGasForStorageMutation instruments the wrapped meter.
func (m *InstrumentedMeter) ChargeComputationGasForStorageMutation(bytes uint64) error {
	err := m.Meter.ChargeComputationGasForStorageMutation(bytes)
	if err != nil {
		outOfGasTotal.Inc()
	}
	return err
}
