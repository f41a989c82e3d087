package dto

// ListRequest holds the offset pagination query of entity listings.
// Zero or negative values are normalized by the engine.
type ListRequest struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

// UploadRequest holds the form fields of a bulk upload besides the file
type UploadRequest struct {
	Mode  string `form:"mode" binding:"omitempty,oneof=collect abort"`
	Sheet string `form:"sheet"`
}

// SearchRequest is the query of the cross-entity search
type SearchRequest struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"gte=0"`
}

// PeriodRequest selects an optional YYYY-MM reporting period
type PeriodRequest struct {
	Period string `form:"period"`
}

// ForecastRequest selects the metric and period of an actual vs forecast report
type ForecastRequest struct {
	Metric string `form:"metric"`
	Period string `form:"period"`
}

// TopNRequest sizes the top customers and vendors report
type TopNRequest struct {
	TopN int `form:"top_n" binding:"gte=0"`
}

// CalendarRequest bounds the calendar events report; both ends are optional
type CalendarRequest struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// UpsertResponse is the result of an inventory upsert
type UpsertResponse struct {
	Created bool `json:"created"`
	Record  any  `json:"record"`
}

// HealthResponse reports service and store health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
