// Package stats 计算仪表盘上的汇总指标。
// 所有指标都是对输入快照的纯函数，每次请求重新计算，不做任何缓存
package stats

import (
	"math"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
)

// Compute 对一组线索计算仪表盘指标。scopeOwnerID 不为 nil 时，
// 只统计归属于该客户经理的线索。
// 空集合下 winRate 和 avgDealSize 都定义为 0，避免除零
func Compute(leads []*domain.Lead, scopeOwnerID *int64) domain.DashboardStats {
	scoped := leads
	if scopeOwnerID != nil {
		scoped = make([]*domain.Lead, 0, len(leads))
		for _, lead := range leads {
			if lead.OwnerID != nil && *lead.OwnerID == *scopeOwnerID {
				scoped = append(scoped, lead)
			}
		}
	}

	var totalValue int64
	activeCount := 0
	closedCount := 0
	statusCounts := make(map[domain.LeadStatus]int)

	for _, lead := range scoped {
		totalValue += lead.Value
		if lead.Status == domain.LeadStatusClosed {
			closedCount++
		} else {
			activeCount++
		}
		statusCounts[lead.Status]++
	}

	winRate := 0
	var avgDealSize int64
	if len(scoped) > 0 {
		winRate = int(math.Round(float64(closedCount) / float64(len(scoped)) * 100))
		avgDealSize = int64(math.Round(float64(totalValue) / float64(len(scoped))))
	}

	// 按漏斗顺序输出，没有线索的状态不出现在结果中
	distribution := make([]domain.StatusCount, 0, len(statusCounts))
	for _, status := range domain.LeadStatuses {
		if count, ok := statusCounts[status]; ok {
			distribution = append(distribution, domain.StatusCount{Status: status, Count: count})
		}
	}

	return domain.DashboardStats{
		TotalPipelineValue: totalValue,
		ActiveLeadsCount:   activeCount,
		WinRate:            winRate,
		AvgDealSize:        avgDealSize,
		StatusDistribution: distribution,
	}
}
