package domain

import (
	"slices"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusProposal    LeadStatus = "proposal"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusClosed      LeadStatus = "closed"
)

// LeadStatuses 按销售漏斗的推进顺序排列，但状态之间允许任意跳转，
// closed 也不是终态，成交的线索可以重新打开
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusNegotiation,
	LeadStatusClosed,
}

func (s LeadStatus) Valid() bool {
	return slices.Contains(LeadStatuses, s)
}

type LeadTemperature string

const (
	LeadTemperatureHot  LeadTemperature = "hot"
	LeadTemperatureWarm LeadTemperature = "warm"
	LeadTemperatureCold LeadTemperature = "cold"
)

var LeadTemperatures = []LeadTemperature{
	LeadTemperatureHot,
	LeadTemperatureWarm,
	LeadTemperatureCold,
}

func (t LeadTemperature) Valid() bool {
	return slices.Contains(LeadTemperatures, t)
}

type Lead struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Company        string          `json:"company"`
	Email          string          `json:"email"`
	Phone          *string         `json:"phone"`
	AlternatePhone *string         `json:"alternatePhone"`
	Status         LeadStatus      `json:"status"`
	Temperature    LeadTemperature `json:"temperature"`
	Value          int64           `json:"value"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastContact    time.Time       `json:"lastContact"`
	NextFollowup   *time.Time      `json:"nextFollowup"`
	FollowupNote   *string         `json:"followupNote"`
	OwnerID        *int64          `json:"ownerId"`
}

// LeadFilter 是查询线索列表时的过滤条件，零值表示不过滤
type LeadFilter struct {
	Search  string
	Status  LeadStatus
	OwnerID *int64
}
