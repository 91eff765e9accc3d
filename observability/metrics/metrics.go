// Package metrics exposes the node's prometheus gauges and histograms.
// Grounded on morelucks-gean's observability/metrics package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var fastBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

var (
	// NodeInfo carries static labels about the running binary.
	NodeInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "node_info",
		Help:      "Static information about the running node.",
	}, []string{"identity"})

	// CurrentSlot is the node's current protocol slot.
	CurrentSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "current_slot",
		Help:      "The node's current slot.",
	})

	// HeadSlot is the slot of the current GHOST fork-choice head.
	HeadSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "head_slot",
		Help:      "Slot of the current GHOST fork-choice head.",
	})

	// AvailableChainHeadSlot is the slot of the current available-chain
	// head (ChAva).
	AvailableChainHeadSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "available_chain_head_slot",
		Help:      "Slot of the current available-chain head (ch_ava).",
	})

	// LatestJustifiedSlot is the ChkpSlot of the highest justified
	// checkpoint.
	LatestJustifiedSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "latest_justified_slot",
		Help:      "ChkpSlot of the highest justified checkpoint.",
	})

	// LatestFinalizedSlot is the ChkpSlot of the highest finalized
	// checkpoint.
	LatestFinalizedSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "latest_finalized_slot",
		Help:      "ChkpSlot of the highest finalized checkpoint.",
	})

	// JustificationParticipationRatio is the fraction (0..1) of validator
	// weight, by the highest justified checkpoint's validator set, that
	// has cast an FFG vote targeting it.
	JustificationParticipationRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gean",
		Name:      "justification_participation_ratio",
		Help:      "Fraction of validator weight targeting the highest justified checkpoint.",
	})

	// VotesProcessed counts votes processed by outcome ("emitted" for the
	// node's own votes, "received" for votes from gossip).
	VotesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gean",
		Name:      "votes_processed_total",
		Help:      "Votes processed, labeled by outcome.",
	}, []string{"outcome"})

	// TickProcessingTime measures how long a single OnTick dispatch
	// takes.
	TickProcessingTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gean",
		Name:      "tick_processing_seconds",
		Help:      "Time spent processing a single tick event.",
		Buckets:   fastBuckets,
	})
)

// MustRegister registers every metric above against reg. Call once at
// node startup.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		NodeInfo,
		CurrentSlot,
		HeadSlot,
		AvailableChainHeadSlot,
		LatestJustifiedSlot,
		LatestFinalizedSlot,
		JustificationParticipationRatio,
		VotesProcessed,
		TickProcessingTime,
	)
}
