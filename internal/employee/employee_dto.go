package employee

type CreateEmployeeRequest struct {
	Email      string `form:"email" json:"email" binding:"required,email"`
	Name       string `form:"name" json:"name" binding:"required"`
	Role       string `form:"role" json:"role"`
	Department string `form:"department" json:"department" binding:"required"`
	Position   string `form:"position" json:"position" binding:"required"`
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

type EmployeeResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Department  string  `json:"department"`
	Position    string  `json:"position"`
	BadgeNumber *string `json:"badge_number,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

type EmployeeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
