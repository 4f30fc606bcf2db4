package visit

// SubmitVisitRequest carries the multipart form fields; the photo itself is
// read from the request separately.
type SubmitVisitRequest struct {
	Latitude     *float64 `form:"latitude"`
	Longitude    *float64 `form:"longitude"`
	LocationName string   `form:"location_name"`
	Notes        string   `form:"notes"`
}

type VisitResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name,omitempty"`
	VisitDate    string   `json:"visit_date"`
	VisitTime    string   `json:"visit_time"`
	PhotoURL     string   `json:"photo_url"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationName string   `json:"location_name"`
	Notes        *string  `json:"notes,omitempty"`
}
