package yahoo

import "strings"

// chartResponse mirrors the subset of /v8/finance/chart used here.
// Numeric arrays hold nulls for suspended sessions.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

func (c chartResponse) notFound() bool {
	e := c.Chart.Error
	if e == nil {
		return false
	}
	return strings.EqualFold(e.Code, "Not Found") || strings.Contains(strings.ToLower(e.Description), "no data found")
}
