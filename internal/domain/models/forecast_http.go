package models

// RecordsRequest filters the recent forecast records listing.
type RecordsRequest struct {
	Algorithm string `query:"algorithm" json:"algorithm" validate:"omitempty,oneof=holt-winters linear-regression"`
	Limit     int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
