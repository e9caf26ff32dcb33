package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/go-chi/chi/v5"
)

type TemplateService interface {
	ListTemplates(ctx context.Context) []domain.ReceiptTemplate
	GetTemplate(ctx context.Context, id string) (domain.ReceiptTemplate, error)
	AddTemplate(ctx context.Context) (domain.ReceiptTemplate, error)
	UpdateTemplate(ctx context.Context, id string, t domain.ReceiptTemplate) (domain.ReceiptTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type TemplateHandler struct {
	templates TemplateService
}

func NewTemplateHandler(templates TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type TemplatesResponse struct {
	Templates []domain.ReceiptTemplate `json:"templates"`
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, TemplatesResponse{Templates: h.templates.ListTemplates(r.Context())})
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// POST /api/v1/receipt-templates creates a copy of the default template.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.AddTemplate(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ReceiptTemplate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	t, err := h.templates.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
