package request

import "flight-booking/pkg/utils"

// PaginatedRequest is filled from the page and per_page query parameters.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

func (p PaginatedRequest) Limit() int {
	return utils.ClampPerPage(p.PerPage)
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}
