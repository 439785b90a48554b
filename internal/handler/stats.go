package handler

import (
	"net/http"
	"strconv"

	"github.com/leea-dev/lead-manager/backend/internal/domain"
	"github.com/leea-dev/lead-manager/backend/internal/stats"
)

// GetDashboardStats 返回仪表盘的汇总指标。
// agent 只能看到自己名下线索的统计，admin 默认看全局，也可以指定 ownerId
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var scopeOwnerID *int64
	if caller.Role == domain.RoleAgent {
		scopeOwnerID = &caller.ID
	} else if ownerIDParam := r.URL.Query().Get("ownerId"); ownerIDParam != "" {
		ownerID, err := strconv.ParseInt(ownerIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "客户经理ID无效")
			return
		}
		scopeOwnerID = &ownerID
	}

	leads, err := h.repository.GetLeads(domain.LeadFilter{})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取仪表盘统计成功", stats.Compute(leads, scopeOwnerID))
}
