package employee

import "time"

// Serialize converts a stored document into its JSON-safe form: the
// ObjectID becomes a hex string and joining_date an RFC 3339 UTC string
// keeping its sub-second digits.
// A nil document serializes to nil.
func Serialize(empl *Employee) *EmployeeResponse {
	if empl == nil {
		return nil
	}

	skills := empl.Skills
	if skills == nil {
		skills = []string{}
	}

	resp := &EmployeeResponse{
		EmployeeID:  empl.EmployeeID,
		Name:        empl.Name,
		Department:  empl.Department,
		Salary:      empl.Salary,
		JoiningDate: empl.JoiningDate.UTC().Format(time.RFC3339Nano),
		Skills:      skills,
	}
	if !empl.ID.IsZero() {
		resp.ID = empl.ID.Hex()
	}
	return resp
}

func serializeList(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i := range empls {
		res[i] = *Serialize(&empls[i])
	}
	return res
}

func serializeSalaries(rows []DepartmentSalary) []DepartmentSalaryResponse {
	res := make([]DepartmentSalaryResponse, len(rows))
	for i, r := range rows {
		res[i] = DepartmentSalaryResponse{
			Department: r.Department,
			AvgSalary:  r.AvgSalary,
		}
	}
	return res
}
