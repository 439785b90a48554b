package stats

import (
	"testing"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
)

func i64(v int64) *int64 { return &v }

func TestCompute_Empty(t *testing.T) {
	got := Compute(nil, nil)

	if got.TotalPipelineValue != 0 {
		t.Errorf("expected total 0, got %d", got.TotalPipelineValue)
	}
	if got.ActiveLeadsCount != 0 {
		t.Errorf("expected 0 active leads, got %d", got.ActiveLeadsCount)
	}
	if got.WinRate != 0 {
		t.Errorf("expected win rate 0, got %d", got.WinRate)
	}
	if got.AvgDealSize != 0 {
		t.Errorf("expected avg deal size 0, got %d", got.AvgDealSize)
	}
	if len(got.StatusDistribution) != 0 {
		t.Errorf("expected empty distribution, got %v", got.StatusDistribution)
	}
}

func TestCompute_Metrics(t *testing.T) {
	leads := []*domain.Lead{
		{Status: domain.LeadStatusNew, Value: 100},
		{Status: domain.LeadStatusQualified, Value: 200},
		{Status: domain.LeadStatusClosed, Value: 300},
	}

	got := Compute(leads, nil)

	if got.TotalPipelineValue != 600 {
		t.Errorf("expected total 600, got %d", got.TotalPipelineValue)
	}
	// closed 的线索不算活跃
	if got.ActiveLeadsCount != 2 {
		t.Errorf("expected 2 active leads, got %d", got.ActiveLeadsCount)
	}
	// 1/3 四舍五入到 33
	if got.WinRate != 33 {
		t.Errorf("expected win rate 33, got %d", got.WinRate)
	}
	if got.AvgDealSize != 200 {
		t.Errorf("expected avg deal size 200, got %d", got.AvgDealSize)
	}
}

func TestCompute_WinRateRoundsUp(t *testing.T) {
	leads := []*domain.Lead{
		{Status: domain.LeadStatusClosed},
		{Status: domain.LeadStatusClosed},
		{Status: domain.LeadStatusNew},
	}

	// 2/3 四舍五入到 67
	if got := Compute(leads, nil); got.WinRate != 67 {
		t.Errorf("expected win rate 67, got %d", got.WinRate)
	}
}

func TestCompute_DistributionFollowsFunnelOrder(t *testing.T) {
	leads := []*domain.Lead{
		{Status: domain.LeadStatusClosed},
		{Status: domain.LeadStatusNew},
		{Status: domain.LeadStatusProposal},
		{Status: domain.LeadStatusNew},
	}

	got := Compute(leads, nil)

	want := []domain.StatusCount{
		{Status: domain.LeadStatusNew, Count: 2},
		{Status: domain.LeadStatusProposal, Count: 1},
		{Status: domain.LeadStatusClosed, Count: 1},
	}
	if len(got.StatusDistribution) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got.StatusDistribution))
	}

	total := 0
	for i, entry := range got.StatusDistribution {
		if entry != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], entry)
		}
		total += entry.Count
	}
	// 分布的计数之和等于线索总数
	if total != len(leads) {
		t.Errorf("expected counts to sum to %d, got %d", len(leads), total)
	}
}

func TestCompute_ScopedToOwner(t *testing.T) {
	leads := []*domain.Lead{
		{Status: domain.LeadStatusNew, Value: 100, OwnerID: i64(2)},
		{Status: domain.LeadStatusClosed, Value: 200, OwnerID: i64(2)},
		{Status: domain.LeadStatusNew, Value: 999, OwnerID: i64(3)},
		{Status: domain.LeadStatusNew, Value: 999},
	}

	got := Compute(leads, i64(2))

	if got.TotalPipelineValue != 300 {
		t.Errorf("expected total 300, got %d", got.TotalPipelineValue)
	}
	if got.ActiveLeadsCount != 1 {
		t.Errorf("expected 1 active lead, got %d", got.ActiveLeadsCount)
	}
	if got.WinRate != 50 {
		t.Errorf("expected win rate 50, got %d", got.WinRate)
	}
}
