package cohort

import (
	"time"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// Inputs carries everything one analysis pass needs. Windowed, when
// non-nil, is the trailing-window view of All and scopes classification
// and cohort aggregation; zombie revenue and the future guard always
// derive from the full dataset.
type Inputs struct {
	All          []txn.Transaction
	Windowed     []txn.Transaction // nil = no window filter
	MaxTimestamp time.Time         // max parsed timestamp across All
	Bands        txn.Bands
	Currency     string
	FeePercent   float64
	AdSpend      map[string]float64 // cohort key "YYYY-MM" → spend
}

// Summary holds the aggregate KPIs of one analysis pass.
type Summary struct {
	TotalTrials       int     `json:"totalTrials"`
	ActiveTrials      int     `json:"activeTrials"`
	TotalPaid         int     `json:"totalPaid"`
	TotalGrossRevenue float64 `json:"totalGrossRevenue"`
	TotalStripeFees   float64 `json:"totalStripeFees"`
	TotalRefunds      float64 `json:"totalRefunds"`
	TotalNetRevenue   float64 `json:"totalNetRevenue"`
	RecoveryRate      float64 `json:"recoveryRate"`  // percent
	ZombieRevenue     float64 `json:"zombieRevenue"` // percent
}

// Result is the cohort-side output record.
type Result struct {
	CohortTable        []Row               `json:"cohortTable"`
	Cohorts            []string            `json:"cohorts"`
	Summary            Summary             `json:"summary"`
	TrialVelocity      []VelocityBucket    `json:"trialVelocity"`
	RefundBreakdown    []RefundRow         `json:"refundBreakdown"`
	LTVWaterfall       []WaterfallRow      `json:"ltvWaterfall"`
	RetentionWaterfall []WaterfallRow      `json:"retentionWaterfall"`
	SpendVsRevenue     []SpendRevenuePoint `json:"spendVsRevenue"`
}

// Analyze runs the full cohort pipeline: timelines → facts → aggregation
// → table, waterfalls, velocity, refund taxonomy, summary. Pure and
// deterministic; every call recomputes from scratch.
func Analyze(in Inputs) *Result {
	scope := in.All
	if in.Windowed != nil {
		scope = in.Windowed
	}
	facts := Classify(BuildTimelines(scope, in.Currency), in.Bands)
	global := facts
	if in.Windowed != nil {
		global = Classify(BuildTimelines(in.All, in.Currency), in.Bands)
	}

	agg := buildAggregate(scope, facts, in)

	totalTrials, totalPaid := 0, 0
	for _, f := range facts {
		if !f.TrialStart.IsZero() {
			totalTrials++
		}
		if !f.FirstPaid.IsZero() {
			totalPaid++
		}
	}
	_, _, recoveryRate := RecoveryStats(facts)
	_, _, zombiePct := ZombieRevenue(global)
	active := ActiveTrials(facts, in.MaxTimestamp)

	net := agg.totalGross.Sub(agg.totalFees).Sub(agg.totalRefunds)

	return &Result{
		CohortTable: agg.tableRows(in.AdSpend),
		Cohorts:     agg.keys,
		Summary: Summary{
			TotalTrials:       totalTrials,
			ActiveTrials:      len(active),
			TotalPaid:         totalPaid,
			TotalGrossRevenue: money(agg.totalGross),
			TotalStripeFees:   money(agg.totalFees),
			TotalRefunds:      money(agg.totalRefunds),
			TotalNetRevenue:   money(net),
			RecoveryRate:      recoveryRate,
			ZombieRevenue:     zombiePct,
		},
		TrialVelocity:      TrialVelocity(facts),
		RefundBreakdown:    RefundBreakdown(in.All, in.Bands, in.Currency),
		LTVWaterfall:       agg.ltvRows(),
		RetentionWaterfall: agg.retentionRows(),
		SpendVsRevenue:     agg.spendVsRevenue(in.AdSpend),
	}
}
