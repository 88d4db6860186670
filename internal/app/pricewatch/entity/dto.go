package entity

type AddProductRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type HistoryResponse struct {
	ProductID string         `json:"product_id"`
	Points    []PriceHistory `json:"points"`
	Total     int            `json:"total"`
}

type CheckResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}
