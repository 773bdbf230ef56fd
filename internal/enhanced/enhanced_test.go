package enhanced

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

func ts(t *testing.T, v string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", v)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", v, err)
	}
	return parsed.UTC()
}

func paid(t *testing.T, cid string, amount float64, when string) txn.Transaction {
	t.Helper()
	return txn.Transaction{
		CustomerID: cid, Status: "Paid", Currency: "usd",
		Amount: decimal.NewFromFloat(amount), Timestamp: ts(t, when),
	}
}

func declined(t *testing.T, cid, reason, when string) txn.Transaction {
	t.Helper()
	return txn.Transaction{
		CustomerID: cid, Status: "Failed", Currency: "usd",
		Amount: decimal.NewFromFloat(29.99), DeclineReason: reason, Timestamp: ts(t, when),
	}
}

func findGroup(rows []GroupStat, name string) *GroupStat {
	for i := range rows {
		if rows[i].Name == name {
			return &rows[i]
		}
	}
	return nil
}

func TestPaymentMethodDefaultsToCard(t *testing.T) {
	res := Analyze([]txn.Transaction{
		paid(t, "a", 29.99, "2024-01-01 10:00:00"),
		{CustomerID: "b", Status: "Paid", Currency: "usd",
			Amount: decimal.NewFromFloat(9.99), PaymentMethod: "link",
			Timestamp: ts(t, "2024-01-01 11:00:00")},
	})

	card := findGroup(res.PaymentMethods, "card")
	if card == nil || card.Total != 1 {
		t.Fatalf("card group = %+v, want total 1", card)
	}
	if link := findGroup(res.PaymentMethods, "link"); link == nil || link.Total != 1 {
		t.Fatalf("link group missing: %+v", res.PaymentMethods)
	}
}

func TestGroupStatRates(t *testing.T) {
	res := Analyze([]txn.Transaction{
		{CustomerID: "a", Status: "Paid", Currency: "usd", CardBrand: "visa",
			Amount: decimal.NewFromFloat(30), Timestamp: ts(t, "2024-01-01 10:00:00")},
		{CustomerID: "b", Status: "Paid", Currency: "usd", CardBrand: "visa",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-02 10:00:00")},
		{CustomerID: "c", Status: "Failed", Currency: "usd", CardBrand: "visa",
			Amount: decimal.NewFromFloat(30), Timestamp: ts(t, "2024-01-03 10:00:00")},
	})

	visa := findGroup(res.CardBrands, "visa")
	if visa == nil {
		t.Fatal("visa group missing")
	}
	if visa.Total != 3 {
		t.Errorf("total = %d, want 3", visa.Total)
	}
	if visa.SuccessRate != 66.7 {
		t.Errorf("success rate = %v, want 66.7", visa.SuccessRate)
	}
	if visa.FailureRate != 33.3 {
		t.Errorf("failure rate = %v, want 33.3", visa.FailureRate)
	}
	if visa.Revenue != 40 {
		t.Errorf("revenue = %v, want 40 (failed amounts excluded)", visa.Revenue)
	}
	if visa.AvgTransaction != 20 {
		t.Errorf("avg transaction = %v, want 20", visa.AvgTransaction)
	}
}

func TestGroupOrdering(t *testing.T) {
	res := Analyze([]txn.Transaction{
		{CustomerID: "a", Status: "Paid", Currency: "usd", CardBrand: "visa",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-01 10:00:00")},
		{CustomerID: "b", Status: "Paid", Currency: "usd", CardBrand: "visa",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-02 10:00:00")},
		{CustomerID: "c", Status: "Paid", Currency: "usd", CardBrand: "mastercard",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-03 10:00:00")},
		{CustomerID: "d", Status: "Paid", Currency: "usd", CardBrand: "amex",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-04 10:00:00")},
	})

	got := make([]string, len(res.CardBrands))
	for i, row := range res.CardBrands {
		got[i] = row.Name
	}
	want := []string{"visa", "amex", "mastercard"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("brand order = %v, want %v (volume desc, name asc on ties)", got, want)
		}
	}
}

func TestStatesRequireUSCountry(t *testing.T) {
	res := Analyze([]txn.Transaction{
		{CustomerID: "a", Status: "Paid", Currency: "usd", Country: "US", State: "CA",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-01 10:00:00")},
		{CustomerID: "b", Status: "Paid", Currency: "usd", Country: "CA", State: "ON",
			Amount: decimal.NewFromFloat(10), Timestamp: ts(t, "2024-01-02 10:00:00")},
	})

	if len(res.States) != 1 || res.States[0].Name != "CA" {
		t.Errorf("states = %+v, want only the US state CA", res.States)
	}
	if len(res.Countries) != 2 {
		t.Errorf("countries = %+v, want US and CA", res.Countries)
	}
}

func TestDeclineReasonRanking(t *testing.T) {
	res := Analyze([]txn.Transaction{
		declined(t, "a", "insufficient_funds", "2024-01-01 10:00:00"),
		declined(t, "b", "insufficient_funds", "2024-01-02 10:00:00"),
		declined(t, "c", "expired_card", "2024-01-03 10:00:00"),
		declined(t, "d", "", "2024-01-04 10:00:00"),
	})

	if len(res.DeclineReasons) != 3 {
		t.Fatalf("got %d decline rows, want 3", len(res.DeclineReasons))
	}
	top := res.DeclineReasons[0]
	if top.Reason != "Insufficient Funds" {
		t.Errorf("top reason = %q, want %q", top.Reason, "Insufficient Funds")
	}
	if top.Count != 2 || top.Percentage != 50 {
		t.Errorf("top row = %+v, want count 2, 50%%", top)
	}
	if top.LostRevenue != 59.98 || top.AvgAmount != 29.99 {
		t.Errorf("lost/avg = %v/%v, want 59.98/29.99", top.LostRevenue, top.AvgAmount)
	}

	var unknown *DeclineReason
	for i := range res.DeclineReasons {
		if res.DeclineReasons[i].Reason == "Unknown" {
			unknown = &res.DeclineReasons[i]
		}
	}
	if unknown == nil || unknown.Count != 1 {
		t.Errorf("missing-reason failures should rank as Unknown: %+v", res.DeclineReasons)
	}
}

func TestConversionFunnel(t *testing.T) {
	res := Analyze([]txn.Transaction{
		paid(t, "repeat", 29.99, "2024-01-01 10:00:00"),
		paid(t, "repeat", 29.99, "2024-02-01 10:00:00"),
		paid(t, "once", 9.99, "2024-01-05 10:00:00"),
		declined(t, "never", "expired_card", "2024-01-06 10:00:00"),
	})

	stages := res.ConversionFunnel
	if len(stages) != 4 {
		t.Fatalf("got %d funnel stages, want 4", len(stages))
	}
	wantCounts := []int{3, 3, 2, 1}
	wantNames := []string{"Total Customers", "Payment Attempted", "First Success", "Multiple Payments"}
	for i, stage := range stages {
		if stage.Stage != wantNames[i] || stage.Count != wantCounts[i] {
			t.Errorf("stage %d = %+v, want %s=%d", i, stage, wantNames[i], wantCounts[i])
		}
	}
	if stages[2].Percentage != 66.7 {
		t.Errorf("first-success percentage = %v, want 66.7", stages[2].Percentage)
	}
}

func TestRetryBuckets(t *testing.T) {
	cases := []struct {
		name    string
		retryAt string
		want    string
	}{
		{"immediate", "2024-01-01 10:30:00", "< 1 Hour"},
		{"same day", "2024-01-01 20:00:00", "1-24 Hours"},
		{"next day", "2024-01-02 16:00:00", "24-48 Hours"},
		{"days later", "2024-01-05 10:00:00", "48+ Hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Analyze([]txn.Transaction{
				declined(t, "r", "card_declined", "2024-01-01 10:00:00"),
				paid(t, "r", 29.99, tc.retryAt),
			})
			for _, b := range res.RetryAnalysis {
				wantCount := 0
				if b.Timing == tc.want {
					wantCount = 1
				}
				if b.Attempts != wantCount || b.Successes != wantCount {
					t.Errorf("bucket %q = %d/%d, want %d/%d",
						b.Timing, b.Attempts, b.Successes, wantCount, wantCount)
				}
				if wantCount == 1 && b.SuccessRate != 100 {
					t.Errorf("bucket %q rate = %v, want 100", b.Timing, b.SuccessRate)
				}
			}
		})
	}
}

func TestRetrySkipsUnparsedTimestamps(t *testing.T) {
	res := Analyze([]txn.Transaction{
		{CustomerID: "r", Status: "Failed", Currency: "usd",
			Amount: decimal.NewFromFloat(29.99)}, // no timestamp
		paid(t, "r", 29.99, "2024-01-02 10:00:00"),
	})
	for _, b := range res.RetryAnalysis {
		if b.Attempts != 0 {
			t.Errorf("bucket %q = %d attempts, want 0 (unparsed failure skipped)", b.Timing, b.Attempts)
		}
	}
}

func TestBehaviorSegmentPrecedence(t *testing.T) {
	var txs []txn.Transaction
	// Champion: three successes, 100% rate.
	txs = append(txs,
		paid(t, "champ", 29.99, "2024-01-01 10:00:00"),
		paid(t, "champ", 29.99, "2024-02-01 10:00:00"),
		paid(t, "champ", 29.99, "2024-03-01 10:00:00"),
	)
	// Reliable: three of four succeed, 75% rate.
	txs = append(txs,
		paid(t, "rel", 19.99, "2024-01-02 10:00:00"),
		declined(t, "rel", "card_declined", "2024-01-15 10:00:00"),
		paid(t, "rel", 19.99, "2024-02-02 10:00:00"),
		paid(t, "rel", 19.99, "2024-03-02 10:00:00"),
	)
	// Struggler: one of two succeeds, 50% rate. Also has exactly one
	// success, so precedence must keep it out of One-Timers.
	txs = append(txs,
		declined(t, "strug", "insufficient_funds", "2024-01-03 10:00:00"),
		paid(t, "strug", 29.99, "2024-01-10 10:00:00"),
	)
	// One-Timer: a single successful attempt.
	txs = append(txs, paid(t, "once", 9.99, "2024-01-04 10:00:00"))
	// No segment: a single failed attempt.
	txs = append(txs, declined(t, "lost", "expired_card", "2024-01-05 10:00:00"))

	res := Analyze(txs)
	segs := res.BehaviorSegments
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	wantCounts := map[string]int{"Champions": 1, "Reliable": 1, "Strugglers": 1, "One-Timers": 1}
	totalAssigned := 0
	for _, s := range segs {
		if s.Count != wantCounts[s.Name] {
			t.Errorf("%s count = %d, want %d", s.Name, s.Count, wantCounts[s.Name])
		}
		totalAssigned += s.Count
	}
	if totalAssigned != 4 {
		t.Errorf("assigned %d customers, want 4 (the all-failed one is unsegmented)", totalAssigned)
	}

	for _, s := range segs {
		switch s.Name {
		case "Champions":
			if s.AvgSuccessRate != 100 || s.TotalRevenue != 89.97 {
				t.Errorf("champions = %+v", s)
			}
		case "Reliable":
			if s.AvgSuccessRate != 75 {
				t.Errorf("reliable rate = %v, want 75", s.AvgSuccessRate)
			}
		case "One-Timers":
			if s.AvgSuccessRate != 100 {
				t.Errorf("one-timer rate = %v, want fixed 100", s.AvgSuccessRate)
			}
			if s.AvgLTV != 9.99 {
				t.Errorf("one-timer LTV = %v, want 9.99", s.AvgLTV)
			}
		}
	}
}

func TestRevenueTrend(t *testing.T) {
	res := Analyze([]txn.Transaction{
		paid(t, "a", 10, "2024-01-02 23:00:00"),
		paid(t, "b", 20, "2024-01-01 08:00:00"),
		paid(t, "c", 5, "2024-01-02 01:00:00"),
		declined(t, "d", "expired_card", "2024-01-01 09:00:00"),
	})

	trend := res.RevenueTrend
	if len(trend) != 2 {
		t.Fatalf("got %d trend points, want 2", len(trend))
	}
	if trend[0].Date != "2024-01-01" || trend[0].Revenue != 20 {
		t.Errorf("trend[0] = %+v, want 2024-01-01 revenue 20", trend[0])
	}
	if trend[1].Date != "2024-01-02" || trend[1].Revenue != 15 {
		t.Errorf("trend[1] = %+v, want 2024-01-02 revenue 15", trend[1])
	}
}

func TestRevenueTrendKeepsLast30Days(t *testing.T) {
	var txs []txn.Transaction
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		txs = append(txs, txn.Transaction{
			CustomerID: "a", Status: "Paid", Currency: "usd",
			Amount: decimal.NewFromFloat(1), Timestamp: day.AddDate(0, 0, i),
		})
	}
	res := Analyze(txs)
	if len(res.RevenueTrend) != 30 {
		t.Fatalf("got %d trend points, want 30", len(res.RevenueTrend))
	}
	if res.RevenueTrend[0].Date != "2024-01-11" {
		t.Errorf("first kept day = %s, want 2024-01-11", res.RevenueTrend[0].Date)
	}
	if res.RevenueTrend[29].Date != "2024-02-09" {
		t.Errorf("last kept day = %s, want 2024-02-09", res.RevenueTrend[29].Date)
	}
}

func TestSummaryCounts(t *testing.T) {
	res := Analyze([]txn.Transaction{
		paid(t, "a", 29.99, "2024-01-01 10:00:00"),
		paid(t, "a", 29.99, "2024-02-01 10:00:00"),
		declined(t, "b", "expired_card", "2024-01-02 10:00:00"),
		paid(t, "c", 9.99, "2024-01-03 10:00:00"),
	})

	s := res.Summary
	if s.TotalCustomers != 3 {
		t.Errorf("customers = %d, want 3", s.TotalCustomers)
	}
	if s.TotalTransactions != 4 || s.SuccessfulTransactions != 3 || s.FailedTransactions != 1 {
		t.Errorf("transactions = %d/%d/%d, want 4/3/1",
			s.TotalTransactions, s.SuccessfulTransactions, s.FailedTransactions)
	}
	if s.OverallSuccessRate != 75 {
		t.Errorf("success rate = %v, want 75", s.OverallSuccessRate)
	}
}
