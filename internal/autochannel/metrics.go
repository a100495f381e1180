package autochannel

import (
	"sort"
	"sync"
	"time"

	"eclipse/pkg/logging"
)

// MutationKind names an outbound platform call.
type MutationKind string

const (
	MutationCreate         MutationKind = "create"
	MutationDelete         MutationKind = "delete"
	MutationRename         MutationKind = "rename"
	MutationSetUserLimit   MutationKind = "set-user-limit"
	MutationSetBitrate     MutationKind = "set-bitrate"
	MutationSetParent      MutationKind = "set-parent"
	MutationSetOverride    MutationKind = "set-permission-override"
	MutationRemoveOverride MutationKind = "remove-permission-override"
	MutationSyncOverrides  MutationKind = "sync-permission-overrides"
	MutationMoveMember     MutationKind = "move-member"
)

// Metrics tracks auto-channel activity for monitoring and the shutdown
// summary. Counters are kept per mutation kind.
type Metrics struct {
	mu sync.RWMutex

	mutations map[MutationKind]*mutationMetrics

	clonesCreated      int64
	clonesDeleted      int64
	ownerTransfers     int64
	ownerTransferFails int64
	manualRenames      int64
	renamesThrottled   int64
	renamesSkipped     int64
}

type mutationMetrics struct {
	Attempts      int64
	Successes     int64
	Failures      int64
	LastFailureAt time.Time
	LastError     string
}

// NewMetrics creates an empty Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		mutations: make(map[MutationKind]*mutationMetrics),
	}
}

func (m *Metrics) getOrCreate(kind MutationKind) *mutationMetrics {
	if mm, ok := m.mutations[kind]; ok {
		return mm
	}
	mm := &mutationMetrics{}
	m.mutations[kind] = mm
	return mm
}

// RecordAttempt records that a mutation was submitted.
func (m *Metrics) RecordAttempt(kind MutationKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreate(kind).Attempts++
}

// RecordResult records the outcome of a mutation.
func (m *Metrics) RecordResult(kind MutationKind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.getOrCreate(kind)
	if err == nil {
		mm.Successes++
		return
	}
	mm.Failures++
	mm.LastFailureAt = time.Now()
	mm.LastError = err.Error()

	logging.Debug("AutoChannelMetrics", "%s failed (failures: %d): %v", kind, mm.Failures, err)
}

func (m *Metrics) incr(counter *int64) {
	m.mu.Lock()
	*counter++
	m.mu.Unlock()
}

func (m *Metrics) RecordCloneCreated()      { m.incr(&m.clonesCreated) }
func (m *Metrics) RecordCloneDeleted()      { m.incr(&m.clonesDeleted) }
func (m *Metrics) RecordOwnerTransfer()     { m.incr(&m.ownerTransfers) }
func (m *Metrics) RecordOwnerTransferFail() { m.incr(&m.ownerTransferFails) }
func (m *Metrics) RecordManualRename()      { m.incr(&m.manualRenames) }
func (m *Metrics) RecordRenameThrottled()   { m.incr(&m.renamesThrottled) }
func (m *Metrics) RecordRenameSkipped()     { m.incr(&m.renamesSkipped) }

// MetricsSummary is a point-in-time copy of the counters.
type MetricsSummary struct {
	ClonesCreated       int64                `json:"clones_created"`
	ClonesDeleted       int64                `json:"clones_deleted"`
	OwnerTransfers      int64                `json:"owner_transfers"`
	OwnerTransferFails  int64                `json:"owner_transfer_failures"`
	ManualRenames       int64                `json:"manual_renames"`
	RenamesThrottled    int64                `json:"renames_throttled"`
	RenamesSkipped      int64                `json:"renames_skipped"`
	Mutations           []MutationMetricView `json:"mutations"`
	MutationFailureRate float64              `json:"mutation_failure_rate"`
}

// MutationMetricView is a read-only view of one mutation kind.
type MutationMetricView struct {
	Kind          MutationKind `json:"kind"`
	Attempts      int64        `json:"attempts"`
	Successes     int64        `json:"successes"`
	Failures      int64        `json:"failures"`
	LastFailureAt time.Time    `json:"last_failure_at,omitempty"`
	LastError     string       `json:"last_error,omitempty"`
}

// Summary returns a copy of all counters, mutation kinds sorted by name.
func (m *Metrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSummary{
		ClonesCreated:      m.clonesCreated,
		ClonesDeleted:      m.clonesDeleted,
		OwnerTransfers:     m.ownerTransfers,
		OwnerTransferFails: m.ownerTransferFails,
		ManualRenames:      m.manualRenames,
		RenamesThrottled:   m.renamesThrottled,
		RenamesSkipped:     m.renamesSkipped,
	}

	var attempts, failures int64
	for kind, mm := range m.mutations {
		s.Mutations = append(s.Mutations, MutationMetricView{
			Kind:          kind,
			Attempts:      mm.Attempts,
			Successes:     mm.Successes,
			Failures:      mm.Failures,
			LastFailureAt: mm.LastFailureAt,
			LastError:     mm.LastError,
		})
		attempts += mm.Attempts
		failures += mm.Failures
	}
	sort.Slice(s.Mutations, func(i, j int) bool { return s.Mutations[i].Kind < s.Mutations[j].Kind })

	if attempts > 0 {
		s.MutationFailureRate = float64(failures) / float64(attempts)
	}
	return s
}
