package search

// searchRequest represents a proxied web search
type searchRequest struct {
	Query string `json:"query" example:"best hiking trails"` // Search terms
	Start int    `json:"start" example:"1"`                  // 1-based result offset
	Num   int    `json:"num" example:"10"`                   // Result count, capped at 10
}
