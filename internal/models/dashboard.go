package models

import "time"

// ChartSeries is a labeled numeric series for the dashboard charts.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// RecentOrder is a condensed order row for the dashboard.
type RecentOrder struct {
	ID         int       `json:"id"`
	Customer   string    `json:"customer,omitempty"`
	TotalPrice Money     `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TopProduct is a best-seller row for the dashboard.
type TopProduct struct {
	Name    string  `json:"name"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// DashboardStats is the aggregate payload of GET /manager-dashboard/.
type DashboardStats struct {
	TotalProducts     int           `json:"totalProducts"`
	TotalCategories   int           `json:"totalCategories"`
	TotalOrders       int           `json:"totalOrders"`
	TotalCustomers    int           `json:"totalCustomers"`
	TotalSales        float64       `json:"totalSales"`
	SalesChart        ChartSeries   `json:"salesChart"`
	RevenueByCategory ChartSeries   `json:"revenueByCategory"`
	RecentOrders      []RecentOrder `json:"recentOrders"`
	TopProducts       []TopProduct  `json:"topProducts"`
}
