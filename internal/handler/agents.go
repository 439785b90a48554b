package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leea-dev/lead-manager/backend/internal/domain"
	"github.com/leea-dev/lead-manager/backend/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// agent 只能看到自己的信息，admin 可以看到所有人
	if caller.Role == domain.RoleAgent {
		agent, err := h.repository.GetAgentByID(caller.ID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.successResponse(w, r, "获取客户经理列表成功", []*domain.Agent{})
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		h.successResponse(w, r, "获取客户经理列表成功", []*domain.Agent{agent})
		return
	}

	agents, err := h.repository.GetAllAgents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取客户经理列表成功", agents)
}

func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	agent := r.Context().Value(AgentInfoCtx).(*domain.Agent)

	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// agent 只能查看自己的信息
	if caller.Role == domain.RoleAgent && agent.ID != caller.ID {
		h.errorResponse(w, r, "权限不足")
		return
	}

	h.successResponse(w, r, "获取客户经理信息成功", agent)
}

func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string  `json:"name" validate:"required"`
		Email  string  `json:"email" validate:"required,email"`
		Role   string  `json:"role" validate:"required,oneof=admin agent"`
		Avatar *string `json:"avatar"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 生成随机初始密码
	password := utils.GenerateRandomPassword(h.config.NewAgent.PasswordLength)

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 插入客户经理到数据库中
	agent := &domain.Agent{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         domain.Role(req.Role),
		Avatar:       req.Avatar,
	}

	if err := h.repository.CreateAgent(agent); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "agents_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 准备账号信息邮件
	mailMessage := domain.MailMessage{
		Type: "create_agent",
		To:   agent.Email,
		Data: domain.CreateAgentMailData{
			Name:     req.Name,
			Email:    req.Email,
			Password: password,
		},
	}

	// 对邮件进行序列化
	emailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 将邮件发送到消息队列
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        emailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 成功响应
	h.successResponse(w, r, "客户经理创建成功", agent)
}

func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   *string                 `json:"name"`
		Email  *string                 `json:"email" validate:"omitempty,email"`
		Role   *string                 `json:"role" validate:"omitempty,oneof=admin agent"`
		Avatar domain.Optional[string] `json:"avatar"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	agent := r.Context().Value(AgentInfoCtx).(*domain.Agent)

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Email != nil {
		agent.Email = *req.Email
	}
	if req.Role != nil {
		agent.Role = domain.Role(*req.Role)
	}
	if req.Avatar.Set {
		agent.Avatar = req.Avatar.Value
	}

	if err := h.repository.UpdateAgent(agent); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "agents_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新客户经理信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新客户经理信息成功", agent)
}

func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	agent := r.Context().Value(AgentInfoCtx).(*domain.Agent)

	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 名下的线索会先转给初始管理员，再删除账号
	if err := h.pipeline.DeleteAgent(caller, agent.ID); err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除客户经理成功", nil)
}

func (h *Handler) UpdateAgentPassword(w http.ResponseWriter, r *http.Request) {
	agent := r.Context().Value(AgentInfoCtx).(*domain.Agent)

	var req struct {
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	agent.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateAgent(agent); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}
