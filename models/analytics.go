package models

// AnalyticsOverview is the point-in-time store summary for the admin
// dashboard. Sums default to zero when no orders exist.
type AnalyticsOverview struct {
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	TotalSales   int64   `json:"totalSales"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// DailySales is one calendar day's order count and revenue. Days with no
// orders are reported with zeros.
type DailySales struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Sales   int64   `json:"sales"`
	Revenue float64 `json:"revenue"`
}
