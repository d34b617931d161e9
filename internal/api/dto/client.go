package dto

// CreateClientRequest represents the client creation request
type CreateClientRequest struct {
	Name    *string `json:"name" binding:"required"`
	TaxID   *string `json:"tax_id"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Note    *string `json:"note"`
}

// UpdateClientRequest represents a partial client update. Omitted fields keep
// their current value.
type UpdateClientRequest struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"tax_id"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Note    *string `json:"note"`
}

// ClientResponse represents a client
type ClientResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	TaxID     *string `json:"tax_id,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ClientListResponse represents a list of clients
type ClientListResponse struct {
	Items      []ClientResponse `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
}

// DeleteClientResponse confirms which client was removed
type DeleteClientResponse struct {
	ID string `json:"id"`
}

// SettingResponse represents a setting
type SettingResponse struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SettingListResponse struct {
	Items []SettingResponse `json:"items"`
}
