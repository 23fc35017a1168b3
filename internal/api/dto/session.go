package dto

type PointRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type QueryRequest struct {
	Text string `json:"text"`
}

type SelectRequest struct {
	As string `json:"as"`
}

type OptionsRequest struct {
	Mode      *string `json:"mode"`
	Objective *string `json:"objective"`
}

type RangeRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type ChargingRequest struct {
	Visible *bool `json:"visible"`
}

type SlotResponse struct {
	Slot     string `json:"slot"`
	Accepted bool   `json:"accepted"`
}
