package pipeline

import (
	"database/sql"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
)

const fallbackEmail = "admin"

func i64(v int64) *int64 { return &v }
func str(s string) *string { return &s }

func admin() domain.Caller { return domain.Caller{ID: 1, Role: domain.RoleAdmin} }
func agent(id int64) domain.Caller {
	return domain.Caller{ID: id, Role: domain.RoleAgent}
}

func TestList_AgentOnlySeesOwnLeads(t *testing.T) {
	store := newFakeStore()
	store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(2)})
	store.addLead(&domain.Lead{Name: "乙", Company: "B", Email: "b@b.com", OwnerID: i64(3)})
	store.addLead(&domain.Lead{Name: "丙", Company: "C", Email: "c@c.com"})
	svc := NewService(store, fallbackEmail)

	// agent 请求时显式指定别人的 ownerId，也应该被覆盖为自己的
	leads, err := svc.List(agent(2), domain.LeadFilter{OwnerID: i64(3)})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}
	if leads[0].OwnerID == nil || *leads[0].OwnerID != 2 {
		t.Errorf("expected lead owned by agent 2, got %v", leads[0].OwnerID)
	}
}

func TestList_AdminSeesAllAndCanFilter(t *testing.T) {
	store := newFakeStore()
	store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", Status: domain.LeadStatusNew, OwnerID: i64(2)})
	store.addLead(&domain.Lead{Name: "乙", Company: "B", Email: "b@b.com", Status: domain.LeadStatusClosed, OwnerID: i64(3)})
	svc := NewService(store, fallbackEmail)

	leads, err := svc.List(admin(), domain.LeadFilter{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}

	// status 为 "all" 等价于不过滤
	leads, err = svc.List(admin(), domain.LeadFilter{Status: "all"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads with status=all, got %d", len(leads))
	}

	leads, err = svc.List(admin(), domain.LeadFilter{Status: domain.LeadStatusClosed})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(leads) != 1 || leads[0].Status != domain.LeadStatusClosed {
		t.Errorf("expected only the closed lead, got %v", leads)
	}
}

func TestList_SearchMatchesNameOrCompany(t *testing.T) {
	store := newFakeStore()
	store.addLead(&domain.Lead{Name: "Sarah Chen", Company: "TechFlow", Email: "a@a.com"})
	store.addLead(&domain.Lead{Name: "Michael Ross", Company: "Apex", Email: "b@b.com"})
	svc := NewService(store, fallbackEmail)

	leads, err := svc.List(admin(), domain.LeadFilter{Search: "techflow"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "Sarah Chen" {
		t.Errorf("expected company match, got %v", leads)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), fallbackEmail)

	if _, err := svc.Get(admin(), 42); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestGet_AgentCannotReadOthersLead(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(3)})
	unowned := store.addLead(&domain.Lead{Name: "乙", Company: "B", Email: "b@b.com"})
	svc := NewService(store, fallbackEmail)

	if _, err := svc.Get(agent(2), lead.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	// 没有归属的线索对 agent 同样不可见
	if _, err := svc.Get(agent(2), unowned.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for unowned lead, got %v", err)
	}
	if _, err := svc.Get(admin(), lead.ID); err != nil {
		t.Errorf("expected admin to read any lead, got %v", err)
	}
}

func TestCreate_Defaults(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fallbackEmail)

	lead, err := svc.Create(admin(), CreateLeadInput{Name: "甲", Company: "A", Email: "a@a.com"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if lead.Status != domain.LeadStatusNew {
		t.Errorf("expected default status new, got %s", lead.Status)
	}
	if lead.Temperature != domain.LeadTemperatureWarm {
		t.Errorf("expected default temperature warm, got %s", lead.Temperature)
	}
	if lead.Value != 0 {
		t.Errorf("expected default value 0, got %d", lead.Value)
	}
	if lead.OwnerID != nil {
		t.Errorf("expected unassigned lead, got owner %d", *lead.OwnerID)
	}
	if lead.ID == 0 {
		t.Errorf("expected store to assign an id")
	}
}

func TestCreate_AgentAlwaysOwnsOwnLeads(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fallbackEmail)

	lead, err := svc.Create(agent(2), CreateLeadInput{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(9)})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if lead.OwnerID == nil || *lead.OwnerID != 2 {
		t.Errorf("expected owner 2, got %v", lead.OwnerID)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newFakeStore(), fallbackEmail)

	cases := []struct {
		name  string
		input CreateLeadInput
		field string
	}{
		{"空名称", CreateLeadInput{Company: "A", Email: "a@a.com"}, "name"},
		{"空公司", CreateLeadInput{Name: "甲", Email: "a@a.com"}, "company"},
		{"空邮箱", CreateLeadInput{Name: "甲", Company: "A"}, "email"},
		{"非法状态", CreateLeadInput{Name: "甲", Company: "A", Email: "a@a.com", Status: "lost"}, "status"},
		{"非法热度", CreateLeadInput{Name: "甲", Company: "A", Email: "a@a.com", Temperature: "freezing"}, "temperature"},
		{"负数金额", CreateLeadInput{Name: "甲", Company: "A", Email: "a@a.com", Value: i64(-1)}, "value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(admin(), tc.input)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestUpdate_AgentCannotTransferOwnership(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(2)})
	svc := NewService(store, fallbackEmail)

	updated, err := svc.Update(agent(2), lead.ID, UpdateLeadInput{
		Name:    str("乙"),
		OwnerID: domain.Optional[int64]{Set: true, Value: i64(9)},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Name != "乙" {
		t.Errorf("expected name to change, got %s", updated.Name)
	}
	if updated.OwnerID == nil || *updated.OwnerID != 2 {
		t.Errorf("expected ownership unchanged, got %v", updated.OwnerID)
	}
}

func TestUpdate_AdminCanTransferAndClearFields(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(&domain.Lead{
		Name: "甲", Company: "A", Email: "a@a.com",
		Phone: str("123"), OwnerID: i64(2),
	})
	svc := NewService(store, fallbackEmail)

	// 显式传 null 清空 phone，转移归属给 3 号
	updated, err := svc.Update(admin(), lead.ID, UpdateLeadInput{
		Phone:   domain.Optional[string]{Set: true, Value: nil},
		OwnerID: domain.Optional[int64]{Set: true, Value: i64(3)},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Phone != nil {
		t.Errorf("expected phone cleared, got %v", *updated.Phone)
	}
	if updated.OwnerID == nil || *updated.OwnerID != 3 {
		t.Errorf("expected owner 3, got %v", updated.OwnerID)
	}
	// 没传的字段保持不变
	if updated.Name != "甲" {
		t.Errorf("expected name unchanged, got %s", updated.Name)
	}
}

func TestUpdate_NotFoundAndForbidden(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(3)})
	svc := NewService(store, fallbackEmail)

	if _, err := svc.Update(admin(), 42, UpdateLeadInput{}); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}
	if _, err := svc.Update(agent(2), lead.ID, UpdateLeadInput{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestTransitionStatus_AnyPairAllowed(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", Status: domain.LeadStatusNew, OwnerID: i64(2)})
	svc := NewService(store, fallbackEmail)

	// 从 new 直接跳到 closed
	updated, err := svc.TransitionStatus(agent(2), lead.ID, domain.LeadStatusClosed)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Status != domain.LeadStatusClosed {
		t.Errorf("expected closed, got %s", updated.Status)
	}

	// 再从 closed 退回 contacted
	updated, err = svc.TransitionStatus(agent(2), lead.ID, domain.LeadStatusContacted)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Status != domain.LeadStatusContacted {
		t.Errorf("expected contacted, got %s", updated.Status)
	}
}

func TestTransitionStatus_RejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(2)})
	svc := NewService(store, fallbackEmail)

	_, err := svc.TransitionStatus(agent(2), lead.ID, "archived")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	mine := store.addLead(&domain.Lead{Name: "甲", Company: "A", Email: "a@a.com", OwnerID: i64(2)})
	others := store.addLead(&domain.Lead{Name: "乙", Company: "B", Email: "b@b.com", OwnerID: i64(3)})
	svc := NewService(store, fallbackEmail)

	if err := svc.Delete(agent(2), others.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(agent(2), mine.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := svc.Get(admin(), mine.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Errorf("expected lead to be gone, got %v", err)
	}
}

func TestDeleteAgent_ReassignsLeadsToFallback(t *testing.T) {
	store := newFakeStore()
	fallback := store.addAgent(&domain.Agent{Name: "管理员", Email: fallbackEmail, Role: domain.RoleAdmin})
	victim := store.addAgent(&domain.Agent{Name: "甲", Email: "a@leea.com", Role: domain.RoleAgent})
	lead := store.addLead(&domain.Lead{Name: "乙", Company: "B", Email: "b@b.com", OwnerID: &victim.ID})
	svc := NewService(store, fallbackEmail)

	if err := svc.DeleteAgent(admin(), victim.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	got, err := svc.Get(admin(), lead.ID)
	if err != nil {
		t.Fatalf("expected lead to survive, got %v", err)
	}
	if got.OwnerID == nil || *got.OwnerID != fallback.ID {
		t.Errorf("expected lead reassigned to fallback %d, got %v", fallback.ID, got.OwnerID)
	}
	if _, ok := store.agents[victim.ID]; ok {
		t.Errorf("expected agent to be deleted")
	}
}

func TestDeleteAgent_NoFallbackLeavesLeadsUnassigned(t *testing.T) {
	store := newFakeStore()
	victim := store.addAgent(&domain.Agent{Name: "甲", Email: "a@leea.com", Role: domain.RoleAgent})
	lead := store.addLead(&domain.Lead{Name: "乙", Company: "B", Email: "b@b.com", OwnerID: &victim.ID})
	svc := NewService(store, fallbackEmail)

	if err := svc.DeleteAgent(admin(), victim.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	got, err := svc.Get(admin(), lead.ID)
	if err != nil {
		t.Fatalf("expected lead to survive, got %v", err)
	}
	if got.OwnerID != nil {
		t.Errorf("expected lead to become unassigned, got owner %d", *got.OwnerID)
	}
}

func TestDeleteAgent_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), fallbackEmail)

	if err := svc.DeleteAgent(admin(), 42); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

// fakeStore 是 Store 的内存实现，只用于测试
type fakeStore struct {
	nextLeadID  int64
	nextAgentID int64
	leads       map[int64]*domain.Lead
	agents      map[int64]*domain.Agent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:  make(map[int64]*domain.Lead),
		agents: make(map[int64]*domain.Agent),
	}
}

func (f *fakeStore) addLead(lead *domain.Lead) *domain.Lead {
	f.nextLeadID++
	lead.ID = f.nextLeadID
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	if lead.Temperature == "" {
		lead.Temperature = domain.LeadTemperatureWarm
	}
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeStore) addAgent(agent *domain.Agent) *domain.Agent {
	f.nextAgentID++
	agent.ID = f.nextAgentID
	f.agents[agent.ID] = agent
	return agent
}

func (f *fakeStore) GetLead(id int64) (*domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *lead
	return &cp, nil
}

func (f *fakeStore) GetLeads(filter domain.LeadFilter) ([]*domain.Lead, error) {
	var ids []int64
	for id := range f.leads {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var result []*domain.Lead
	for _, id := range ids {
		lead := f.leads[id]
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(lead.Name), s) && !strings.Contains(strings.ToLower(lead.Company), s) {
				continue
			}
		}
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		if filter.OwnerID != nil && (lead.OwnerID == nil || *lead.OwnerID != *filter.OwnerID) {
			continue
		}
		cp := *lead
		result = append(result, &cp)
	}
	return result, nil
}

func (f *fakeStore) CreateLead(lead *domain.Lead) error {
	f.nextLeadID++
	lead.ID = f.nextLeadID
	cp := *lead
	f.leads[lead.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateLead(lead *domain.Lead) error {
	if _, ok := f.leads[lead.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *lead
	f.leads[lead.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteLead(id int64) error {
	delete(f.leads, id)
	return nil
}

func (f *fakeStore) GetAgentByEmail(email string) (*domain.Agent, error) {
	for _, agent := range f.agents {
		if agent.Email == email {
			cp := *agent
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) DeleteAgentReassigningLeads(agentID int64, fallbackID *int64) error {
	if _, ok := f.agents[agentID]; !ok {
		return sql.ErrNoRows
	}
	// 模拟 owner_id 外键的 ON DELETE SET NULL 行为
	for _, lead := range f.leads {
		if lead.OwnerID != nil && *lead.OwnerID == agentID {
			if fallbackID != nil {
				id := *fallbackID
				lead.OwnerID = &id
			} else {
				lead.OwnerID = nil
			}
		}
	}
	delete(f.agents, agentID)
	return nil
}
