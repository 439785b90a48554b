package domain

type StatusCount struct {
	Status LeadStatus `json:"status"`
	Count  int        `json:"count"`
}

type DashboardStats struct {
	TotalPipelineValue int64         `json:"totalPipelineValue"`
	ActiveLeadsCount   int           `json:"activeLeadsCount"`
	WinRate            int           `json:"winRate"`
	AvgDealSize        int64         `json:"avgDealSize"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
}
