package employee

type CreateEmployeeRequest struct {
	EmployeeID  string   `json:"employee_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Department  string   `json:"department" binding:"required"`
	Salary      *float64 `json:"salary" binding:"required,gte=0"`
	JoiningDate string   `json:"joining_date" binding:"required"`
	Skills      []string `json:"skills" binding:"required,dive,required"`
}

// UpdateEmployeeRequest carries a partial update; omitted or null fields
// are not changed.
type UpdateEmployeeRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1"`
	Department  *string   `json:"department" binding:"omitempty,min=1"`
	Salary      *float64  `json:"salary" binding:"omitempty,gte=0"`
	JoiningDate *string   `json:"joining_date"`
	Skills      *[]string `json:"skills" binding:"omitempty,dive,required"`
}

type ListByDepartmentQuery struct {
	Skip  int64 `form:"skip,default=0" binding:"gte=0"`
	Limit int64 `form:"limit,default=10" binding:"gte=1,lte=100"`
}

type SearchBySkillsQuery struct {
	Skills string `form:"skills" binding:"required"`
}

type EmployeeResponse struct {
	ID          string   `json:"_id"`
	EmployeeID  string   `json:"employee_id"`
	Name        string   `json:"name"`
	Department  string   `json:"department"`
	Salary      float64  `json:"salary"`
	JoiningDate string   `json:"joining_date"`
	Skills      []string `json:"skills"`
}

type DepartmentSalaryResponse struct {
	Department string  `json:"department"`
	AvgSalary  float64 `json:"avg_salary"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
