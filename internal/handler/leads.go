package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leea-dev/lead-manager/backend/internal/domain"
	"github.com/leea-dev/lead-manager/backend/internal/pipeline"
)

func (h *Handler) leadID(r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	filter := domain.LeadFilter{
		Search: r.URL.Query().Get("search"),
		Status: domain.LeadStatus(r.URL.Query().Get("status")),
	}

	// agent 的 ownerId 过滤会在 pipeline 中被强制为自己
	if ownerIDParam := r.URL.Query().Get("ownerId"); ownerIDParam != "" {
		ownerID, err := strconv.ParseInt(ownerIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "客户经理ID无效")
			return
		}
		filter.OwnerID = &ownerID
	}

	leads, err := h.pipeline.List(caller, filter)
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取线索列表成功", leads)
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	id, ok := h.leadID(r)
	if !ok {
		h.errorResponse(w, r, "线索ID无效")
		return
	}

	lead, err := h.pipeline.Get(caller, id)
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取线索成功", lead)
}

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var input pipeline.CreateLeadInput
	if err := h.readJSON(r, &input); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lead, err := h.pipeline.Create(caller, input)
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建线索成功", lead)
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	id, ok := h.leadID(r)
	if !ok {
		h.errorResponse(w, r, "线索ID无效")
		return
	}

	var input pipeline.UpdateLeadInput
	if err := h.readJSON(r, &input); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lead, err := h.pipeline.Update(caller, id, input)
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新线索成功", lead)
}

// UpdateLeadStatus 对应看板上拖拽卡片改变线索状态的操作
func (h *Handler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	id, ok := h.leadID(r)
	if !ok {
		h.errorResponse(w, r, "线索ID无效")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	lead, err := h.pipeline.TransitionStatus(caller, id, domain.LeadStatus(req.Status))
	if err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新线索状态成功", lead)
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	id, ok := h.leadID(r)
	if !ok {
		h.errorResponse(w, r, "线索ID无效")
		return
	}

	if err := h.pipeline.Delete(caller, id); err != nil {
		h.pipelineError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除线索成功", nil)
}
