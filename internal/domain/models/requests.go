package models

// Requests for prediction HTTP endpoints.

type PredictionsRequest struct {
	Date  string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=600"`
	Side  string `query:"side" json:"side" default:"all" validate:"oneof=all long short"`
}

type PredictionRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=12"`
	Date   string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type FetchRequest struct {
	Symbols []string `json:"symbols" validate:"omitempty,max=600,dive,required,max=12"`
	Finnhub bool     `json:"finnhub"`
	Grok    bool     `json:"grok"`
}
