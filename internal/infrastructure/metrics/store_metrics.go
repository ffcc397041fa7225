package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	domainerrors "payflow.backend/internal/domain/errors"
)

// Result labels for wallet store operations
const (
	ResultOK                  = "ok"
	ResultConstraintViolation = "constraint_violation"
	ResultReferenceError      = "reference_error"
	ResultConcurrencyConflict = "concurrency_conflict"
	ResultNotFound            = "not_found"
	ResultInvalidInput        = "invalid_input"
	ResultError               = "error"
)

// StoreMetrics counts wallet store operations by outcome
type StoreMetrics struct {
	operations *prometheus.CounterVec
}

// NewStoreMetrics registers the wallet store counters on reg.
// A nil registerer leaves the counters unregistered.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payflow",
			Subsystem: "wallet_store",
			Name:      "operations_total",
			Help:      "Wallet store operations partitioned by operation and result.",
		}, []string{"operation", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations)
	}
	return m
}

// Observe records one operation outcome. Safe on a nil receiver.
func (m *StoreMetrics) Observe(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, ResultOf(err)).Inc()
}

// ResultOf maps an operation error onto its result label
func ResultOf(err error) string {
	if err == nil {
		return ResultOK
	}
	switch domainerrors.CodeOf(err) {
	case domainerrors.CodeConstraintViolation:
		return ResultConstraintViolation
	case domainerrors.CodeReferenceError:
		return ResultReferenceError
	case domainerrors.CodeConcurrencyConflict:
		return ResultConcurrencyConflict
	case domainerrors.CodeNotFound:
		return ResultNotFound
	case domainerrors.CodeInvalidInput:
		return ResultInvalidInput
	default:
		return ResultError
	}
}
