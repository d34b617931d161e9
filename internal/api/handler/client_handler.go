package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/api/util"
	"github.com/martijn/clientbook/internal/core/service"
)

var (
	clientQueryFields = []string{"name", "tax_id", "email", "phone", "address", "note"}
	clientOrderFields = []string{"name", "created_at", "updated_at"}
)

// sortableTime has a fixed width so formatted times order lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

type ClientHandler struct {
	clients *service.ClientService
}

func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// CreateClient handles POST /clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.clients.CreateClient(c.Request.Context(), service.CreateClientInput{
		Name:    *req.Name,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Note:    req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toClientResponse(view))
}

// ListClients handles GET /clients
//
// Supports query=field|value,... filters, order=field|asc,... and
// page/per_page pagination.
func (h *ClientHandler) ListClients(c *gin.Context) {
	var filter util.ListFilter
	var err error

	if q := c.Query("query"); q != "" {
		if filter.Filters, err = util.ParseQueryString(q); err != nil {
			badRequest(c, err.Error())
			return
		}
		fields := make([]string, len(filter.Filters))
		for i, f := range filter.Filters {
			fields[i] = f.Field
		}
		if err := util.ValidateFields("query", fields, clientQueryFields); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	if o := c.Query("order"); o != "" {
		if filter.Order, err = util.ParseOrderString(o); err != nil {
			badRequest(c, err.Error())
			return
		}
		fields := make([]string, len(filter.Order))
		for i, o := range filter.Order {
			fields[i] = o.Field
		}
		if err := util.ValidateFields("order", fields, clientOrderFields); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	filter.Page, filter.PerPage = util.ParsePage(c.Query("page"), c.Query("per_page"))

	views, err := h.clients.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	page, total := util.Apply(views, filter, clientField)

	response := dto.ClientListResponse{
		Items: make([]dto.ClientResponse, len(page)),
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       filter.Page,
			PerPage:    filter.PerPage,
			TotalPages: util.TotalPages(total, filter.PerPage),
		},
	}
	for i, view := range page {
		response.Items[i] = toClientResponse(view)
	}

	c.JSON(http.StatusOK, response)
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	view, err := h.clients.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(view))
}

// LookupClient handles GET /clients/lookup?tax_id=...&email=...
func (h *ClientHandler) LookupClient(c *gin.Context) {
	in := service.FindClientInput{
		TaxID: c.Query("tax_id"),
		Email: c.Query("email"),
	}
	if in.TaxID == "" && in.Email == "" {
		badRequest(c, "tax_id or email is required")
		return
	}

	view, err := h.clients.FindClient(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClientResponse(view))
}

// UpdateClient handles PUT /clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.clients.UpdateClient(c.Request.Context(), c.Param("id"), service.UpdateClientInput{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Note:    req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toClientResponse(view))
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, err := h.clients.DeleteClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteClientResponse{ID: id})
}

func toClientResponse(view service.ClientView) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        view.ID,
		Name:      view.Name,
		TaxID:     view.TaxID,
		Email:     view.Email,
		Phone:     view.Phone,
		Address:   view.Address,
		Note:      view.Note,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}

func clientField(view service.ClientView, field string) (string, bool) {
	deref := func(s *string) (string, bool) {
		if s == nil {
			return "", false
		}
		return *s, true
	}

	switch field {
	case "name":
		return view.Name, true
	case "tax_id":
		return deref(view.TaxID)
	case "email":
		return deref(view.Email)
	case "phone":
		return deref(view.Phone)
	case "address":
		return deref(view.Address)
	case "note":
		return deref(view.Note)
	case "created_at":
		return sortable(view.CreatedAt), true
	case "updated_at":
		return sortable(view.UpdatedAt), true
	}
	return "", false
}

func sortable(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format(sortableTime)
}
