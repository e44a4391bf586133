package models

// NamedCount is one bar of a chart.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RequestSummary holds the dashboard tile counts.
type RequestSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	OnHold   int `json:"onHold"`
	Complete int `json:"completed"`
	Flagged  int `json:"flagged"`
}

// TrendPoint counts requests created in one calendar month.
type TrendPoint struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Count int    `json:"count"`
}

// RequestStats is the aggregate view over a list of requests.
type RequestStats struct {
	Summary    RequestSummary `json:"summary"`
	ByDistrict []NamedCount   `json:"byDistrict"`
	TopSchools []NamedCount   `json:"topSchools"`
	ByStatus   []NamedCount   `json:"byStatus"`
	Weekly     []NamedCount   `json:"weekly"`
	Monthly    []NamedCount   `json:"monthly"`
	Trend      []TrendPoint   `json:"trend"`
}

// DistrictDashboard is returned to district staff.
type DistrictDashboard struct {
	District       string             `json:"district"`
	Stats          RequestStats       `json:"stats"`
	RecentActivity []TransportRequest `json:"recentActivity"`
}

// AdminDashboard is returned to system administrators.
type AdminDashboard struct {
	Stats          RequestStats     `json:"stats"`
	PendingSupport int              `json:"pendingSupport"`
	DistrictCount  int              `json:"districtCount"`
	Districts      []District       `json:"districts"`
	RecentActivity []SystemActivity `json:"recentActivity"`
	RecentSupport  []SupportMessage `json:"recentSupport"`
}
