package seed

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/leea-dev/lead-manager/backend/internal/config"
	"github.com/leea-dev/lead-manager/backend/internal/domain"
	"github.com/leea-dev/lead-manager/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// SeedDemoData 插入一套演示数据：两个客户经理和六条覆盖各个状态的线索，
// 方便前端联调时看板和仪表盘上有东西可看
func SeedDemoData(cfg *config.Config, r *repository.Repository) {
	// 先保证初始管理员存在，演示线索有一部分归属在它名下
	admin, err := r.GetAgentByEmail(cfg.InitialAdmin.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
			if err != nil {
				slog.Error("无法生成初始管理员密码哈希", "error", err)
				return
			}

			admin = &domain.Agent{
				Name:         cfg.InitialAdmin.Name,
				Email:        cfg.InitialAdmin.Email,
				PasswordHash: string(passwordHash),
				Role:         domain.RoleAdmin,
			}
			if err := r.CreateAgent(admin); err != nil {
				slog.Error("无法创建初始管理员", "error", err)
				return
			}
		default:
			slog.Error("无法获取初始管理员", "error", err)
			return
		}
	}

	// 插入演示用的客户经理
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.Agent.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("无法生成演示客户经理密码哈希", "error", err)
		return
	}

	demoAgents := []*domain.Agent{
		{Name: "Jamie Lee", Email: "jamie@leea.com", PasswordHash: string(passwordHash), Role: domain.RoleAgent},
		{Name: "Sam Rivera", Email: "sam@leea.com", PasswordHash: string(passwordHash), Role: domain.RoleAgent},
	}

	for i, agent := range demoAgents {
		existing, err := r.GetAgentByEmail(agent.Email)
		if err == nil {
			// 已经存在则复用，保证重复执行是幂等的
			demoAgents[i] = existing
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("无法获取演示客户经理", "error", err)
			return
		}

		if err := r.CreateAgent(agent); err != nil {
			slog.Error("无法插入演示客户经理", "error", err)
			return
		}
	}

	jamie, sam := demoAgents[0], demoAgents[1]

	// 插入演示线索，日期只是为了测试，取相对时间即可
	str := func(s string) *string { return &s }
	at := func(d time.Duration) *time.Time {
		t := time.Now().Add(d)
		return &t
	}

	demoLeads := []*domain.Lead{
		{
			Name: "Sarah Chen", Company: "TechFlow Dynamics", Email: "sarah.c@techflow.com",
			Phone: str("+91 98765 43210"), Status: domain.LeadStatusQualified,
			Temperature: domain.LeadTemperatureHot, Value: 1250000,
			NextFollowup: at(time.Hour * 24 * 2), FollowupNote: str("Discuss Q1 requirements"),
			OwnerID: &admin.ID,
		},
		{
			Name: "Michael Ross", Company: "Apex Manufacturing", Email: "mross@apex.co",
			Phone: str("+91 87654 32109"), Status: domain.LeadStatusNegotiation,
			Temperature: domain.LeadTemperatureHot, Value: 4500000,
			NextFollowup: at(time.Hour * 24 * 4), FollowupNote: str("Final price negotiation"),
			OwnerID: &jamie.ID,
		},
		{
			Name: "Jessica Wu", Company: "Global Logistics", Email: "j.wu@glogistics.net",
			Phone: str("+91 76543 21098"), Status: domain.LeadStatusNew,
			Temperature: domain.LeadTemperatureWarm, Value: 820000,
			NextFollowup: at(time.Hour * 24), FollowupNote: str("Introduction call"),
			OwnerID: &admin.ID,
		},
		{
			Name: "David Miller", Company: "Miller & Sons", Email: "david@millersons.com",
			Phone: str("+91 65432 10987"), Status: domain.LeadStatusContacted,
			Temperature: domain.LeadTemperatureWarm, Value: 1500000,
			NextFollowup: at(time.Hour * 24 * 7), FollowupNote: str("Follow up on technical specs"),
			OwnerID: &sam.ID,
		},
		{
			Name: "Emily Davis", Company: "BrightStar Energy", Email: "edavis@brightstar.io",
			Phone: str("+91 54321 09876"), Status: domain.LeadStatusProposal,
			Temperature: domain.LeadTemperatureHot, Value: 2800000,
			NextFollowup: at(time.Hour * 24 * 3), FollowupNote: str("Present solution deck"),
			OwnerID: &jamie.ID,
		},
		{
			Name: "Raj Patel", Company: "Patel Industries", Email: "raj@patelindustries.in",
			Phone: str("+91 43210 98765"), Status: domain.LeadStatusClosed,
			Temperature: domain.LeadTemperatureHot, Value: 3200000,
			FollowupNote: str("Deal closed successfully"),
			OwnerID:      &sam.ID,
		},
	}

	cnt := 0
	for _, lead := range demoLeads {
		if err := r.CreateLead(lead); err != nil {
			slog.Error("无法插入演示线索", "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入演示数据完成", "leads", cnt)
}
