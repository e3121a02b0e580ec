package domain

// SalesBucket is one point of the analytics time series. Buckets are seeded
// to zero across the whole requested range so gaps show up as zeros.
type SalesBucket struct {
	Key     string  `json:"key"`
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
	Quantity  int     `json:"quantity"`
}

type SalesMetrics struct {
	TotalRevenue   float64      `json:"totalRevenue"`
	TotalOrders    int          `json:"totalOrders"`
	AverageBasket  float64      `json:"averageBasket"`
	TotalCustomers int          `json:"totalCustomers"`
	TopProducts    []TopProduct `json:"topProducts"`
}

type SalesReport struct {
	Period     string        `json:"period"`
	SeriesType string        `json:"seriesType"`
	Metrics    SalesMetrics  `json:"metrics"`
	Series     []SalesBucket `json:"series"`
}
