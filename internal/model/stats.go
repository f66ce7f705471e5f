package model

// AdminStats is the dashboard summary. Counts are estimates.
type AdminStats struct {
	Users     int64 `json:"users"`
	MenuItems int64 `json:"products"`
	Orders    int64 `json:"orders"`
	Revenue   Money `json:"revenue"`
}

// CategoryStat is one row of the per-category order breakdown.
type CategoryStat struct {
	Category string `json:"category" bson:"category"`
	Quantity int64  `json:"quantity" bson:"quantity"`
	Revenue  Money  `json:"revenue" bson:"revenue"`
}
