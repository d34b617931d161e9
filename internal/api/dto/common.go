package dto

// ErrorResponse is the body of every failed request. Kind, Entity and ID are
// set when the failure came from a client command.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Entity  string `json:"entity,omitempty"`
	ID      string `json:"id,omitempty"`
}

// PaginationInfo describes the page returned by a list endpoint
type PaginationInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}
