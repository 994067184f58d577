package model

// TechnicianStats summarises the tickets assigned to one technician.
//
// AvgResolutionDays is the mean age (now - created_at) of the technician's
// resolved tickets, rounded to whole days. No resolution timestamp is stored,
// so the value keeps growing after a ticket is resolved. Nil when nothing has
// been resolved yet.
type TechnicianStats struct {
	TechnicianName    string `json:"technician_name"`
	AssignedTickets   int    `json:"assigned_tickets"`
	ResolvedTickets   int    `json:"resolved_tickets"`
	InProgressTickets int    `json:"in_progress_tickets"`
	AvgResolutionDays *int   `json:"avg_resolution_days"`
	EfficiencyPercent int    `json:"efficiency_percent"`
}

// MonthlyStats is one calendar-month bucket. Months without tickets are absent.
type MonthlyStats struct {
	Key      string `json:"key"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Label    string `json:"label"`
	Assigned int    `json:"assigned"`
	Resolved int    `json:"resolved"`
}
