package attendance

type AttendanceResponse struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name,omitempty"`
	AttendanceDate string `json:"attendance_date"`
	CheckInTime    string `json:"check_in_time"`
	Status         string `json:"status"`
}
