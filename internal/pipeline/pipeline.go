// Package pipeline 实现线索从新建到成交的完整生命周期，
// 包括基于角色的可见性控制和删除客户经理时的线索重分配
package pipeline

import (
	"database/sql"
	"errors"
	"time"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
)

// Store 是 pipeline 依赖的存储层原语，由 repository 实现。
// 这里不做任何缓存，每次调用都会重新访问存储
type Store interface {
	GetLead(id int64) (*domain.Lead, error)
	GetLeads(filter domain.LeadFilter) ([]*domain.Lead, error)
	CreateLead(lead *domain.Lead) error
	UpdateLead(lead *domain.Lead) error
	DeleteLead(id int64) error

	GetAgentByEmail(email string) (*domain.Agent, error)
	DeleteAgentReassigningLeads(agentID int64, fallbackID *int64) error
}

type Service struct {
	store Store
	// 删除客户经理时用来查找兜底管理员的邮箱，即初始管理员的邮箱
	fallbackAdminEmail string
}

func NewService(store Store, fallbackAdminEmail string) *Service {
	return &Service{
		store:              store,
		fallbackAdminEmail: fallbackAdminEmail,
	}
}

type CreateLeadInput struct {
	Name           string                 `json:"name" validate:"required"`
	Company        string                 `json:"company" validate:"required"`
	Email          string                 `json:"email" validate:"required,email"`
	Phone          *string                `json:"phone"`
	AlternatePhone *string                `json:"alternatePhone"`
	Status         domain.LeadStatus      `json:"status"`
	Temperature    domain.LeadTemperature `json:"temperature"`
	Value          *int64                 `json:"value"`
	LastContact    *time.Time             `json:"lastContact"`
	NextFollowup   *time.Time             `json:"nextFollowup"`
	FollowupNote   *string                `json:"followupNote"`
	OwnerID        *int64                 `json:"ownerId"`
}

type UpdateLeadInput struct {
	Name           *string                    `json:"name"`
	Company        *string                    `json:"company"`
	Email          *string                    `json:"email" validate:"omitempty,email"`
	Phone          domain.Optional[string]    `json:"phone"`
	AlternatePhone domain.Optional[string]    `json:"alternatePhone"`
	Status         *domain.LeadStatus         `json:"status"`
	Temperature    *domain.LeadTemperature    `json:"temperature"`
	Value          *int64                     `json:"value"`
	LastContact    *time.Time                 `json:"lastContact"`
	NextFollowup   domain.Optional[time.Time] `json:"nextFollowup"`
	FollowupNote   domain.Optional[string]    `json:"followupNote"`
	OwnerID        domain.Optional[int64]     `json:"ownerId"`
}

// List 返回调用者可见的线索。agent 角色只能看到自己名下的线索，
// 无论请求里传了什么 ownerId 过滤条件
func (s *Service) List(caller domain.Caller, filter domain.LeadFilter) ([]*domain.Lead, error) {
	if caller.Role == domain.RoleAgent {
		ownerID := caller.ID
		filter.OwnerID = &ownerID
	}

	// "all" 等价于不过滤状态
	if filter.Status == "all" {
		filter.Status = ""
	}

	return s.store.GetLeads(filter)
}

func (s *Service) Get(caller domain.Caller, id int64) (*domain.Lead, error) {
	lead, err := s.store.GetLead(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	if !canAccess(caller, lead) {
		return nil, ErrForbidden
	}

	return lead, nil
}

func (s *Service) Create(caller domain.Caller, input CreateLeadInput) (*domain.Lead, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "名称不能为空"}
	}
	if input.Company == "" {
		return nil, &ValidationError{Field: "company", Message: "公司不能为空"}
	}
	if input.Email == "" {
		return nil, &ValidationError{Field: "email", Message: "邮箱不能为空"}
	}

	status := input.Status
	if status == "" {
		status = domain.LeadStatusNew
	}
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "非法的线索状态"}
	}

	temperature := input.Temperature
	if temperature == "" {
		temperature = domain.LeadTemperatureWarm
	}
	if !temperature.Valid() {
		return nil, &ValidationError{Field: "temperature", Message: "非法的线索热度"}
	}

	var value int64
	if input.Value != nil {
		if *input.Value < 0 {
			return nil, &ValidationError{Field: "value", Message: "金额不能为负数"}
		}
		value = *input.Value
	}

	ownerID := input.OwnerID
	// agent 创建的线索永远属于自己，请求里指定的 ownerId 会被覆盖；
	// admin 可以指定任意归属，也可以留空表示未分配
	if caller.Role == domain.RoleAgent {
		id := caller.ID
		ownerID = &id
	}

	lead := &domain.Lead{
		Name:           input.Name,
		Company:        input.Company,
		Email:          input.Email,
		Phone:          input.Phone,
		AlternatePhone: input.AlternatePhone,
		Status:         status,
		Temperature:    temperature,
		Value:          value,
		NextFollowup:   input.NextFollowup,
		FollowupNote:   input.FollowupNote,
		OwnerID:        ownerID,
	}
	if input.LastContact != nil {
		lead.LastContact = *input.LastContact
	}

	if err := s.store.CreateLead(lead); err != nil {
		return nil, err
	}

	return lead, nil
}

func (s *Service) Update(caller domain.Caller, id int64, input UpdateLeadInput) (*domain.Lead, error) {
	lead, err := s.store.GetLead(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	if !canAccess(caller, lead) {
		return nil, ErrForbidden
	}

	// agent 不允许转移线索的归属，即便是自己名下的线索
	if caller.Role == domain.RoleAgent {
		input.OwnerID = domain.Optional[int64]{}
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, &ValidationError{Field: "name", Message: "名称不能为空"}
		}
		lead.Name = *input.Name
	}
	if input.Company != nil {
		if *input.Company == "" {
			return nil, &ValidationError{Field: "company", Message: "公司不能为空"}
		}
		lead.Company = *input.Company
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, &ValidationError{Field: "email", Message: "邮箱不能为空"}
		}
		lead.Email = *input.Email
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, &ValidationError{Field: "status", Message: "非法的线索状态"}
		}
		lead.Status = *input.Status
	}
	if input.Temperature != nil {
		if !input.Temperature.Valid() {
			return nil, &ValidationError{Field: "temperature", Message: "非法的线索热度"}
		}
		lead.Temperature = *input.Temperature
	}
	if input.Value != nil {
		if *input.Value < 0 {
			return nil, &ValidationError{Field: "value", Message: "金额不能为负数"}
		}
		lead.Value = *input.Value
	}
	if input.LastContact != nil {
		lead.LastContact = *input.LastContact
	}
	// 可空字段区分"没传"和"显式传 null"，后者会清空字段
	if input.Phone.Set {
		lead.Phone = input.Phone.Value
	}
	if input.AlternatePhone.Set {
		lead.AlternatePhone = input.AlternatePhone.Value
	}
	if input.NextFollowup.Set {
		lead.NextFollowup = input.NextFollowup.Value
	}
	if input.FollowupNote.Set {
		lead.FollowupNote = input.FollowupNote.Value
	}
	if input.OwnerID.Set {
		lead.OwnerID = input.OwnerID.Value
	}

	if err := s.store.UpdateLead(lead); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	return lead, nil
}

// TransitionStatus 将线索移动到指定状态。六个状态之间允许任意跳转，
// 比如从 new 直接到 closed，或者从 negotiation 退回 contacted，
// 这是有意为之的设计，反映真实销售流程中停滞、重开和快速成交的情况
func (s *Service) TransitionStatus(caller domain.Caller, id int64, status domain.LeadStatus) (*domain.Lead, error) {
	lead, err := s.store.GetLead(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	if !canAccess(caller, lead) {
		return nil, ErrForbidden
	}

	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "非法的线索状态"}
	}

	lead.Status = status
	if err := s.store.UpdateLead(lead); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	return lead, nil
}

func (s *Service) Delete(caller domain.Caller, id int64) error {
	lead, err := s.store.GetLead(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLeadNotFound
		}
		return err
	}

	if !canAccess(caller, lead) {
		return ErrForbidden
	}

	return s.store.DeleteLead(id)
}

// DeleteAgent 删除客户经理之前，会把其名下的线索全部转给兜底管理员。
// 找不到兜底管理员（或者被删除的就是兜底管理员本人）时直接删除，
// 名下的线索变为未分配；HTTP 层禁止删除初始管理员，所以正常部署下不会发生。
// 本操作不校验调用者角色，只允许 admin 调用由路由层保证
func (s *Service) DeleteAgent(caller domain.Caller, agentID int64) error {
	var fallbackID *int64

	fallback, err := s.store.GetAgentByEmail(s.fallbackAdminEmail)
	switch {
	case err == nil:
		if fallback.ID != agentID {
			fallbackID = &fallback.ID
		}
	case errors.Is(err, sql.ErrNoRows):
		// 兜底管理员不存在，跳过重分配
	default:
		return err
	}

	if err := s.store.DeleteAgentReassigningLeads(agentID, fallbackID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAgentNotFound
		}
		return err
	}

	return nil
}

func canAccess(caller domain.Caller, lead *domain.Lead) bool {
	if caller.Role != domain.RoleAgent {
		return true
	}
	return lead.OwnerID != nil && *lead.OwnerID == caller.ID
}
