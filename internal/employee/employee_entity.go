package employee

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employee is a document of the employees collection. ID is assigned by the
// store on insert; EmployeeID is the client supplied key used for lookups.
type Employee struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID  string             `bson:"employee_id"`
	Name        string             `bson:"name"`
	Department  string             `bson:"department"`
	Salary      float64            `bson:"salary"`
	JoiningDate time.Time          `bson:"joining_date"`
	Skills      []string           `bson:"skills"`
}

// EmployeeUpdate lists the fields of a partial update. Nil fields are left
// untouched. There is no EmployeeID field: the key is immutable.
type EmployeeUpdate struct {
	Name        *string
	Department  *string
	Salary      *float64
	JoiningDate *time.Time
	Skills      *[]string
}

func (u EmployeeUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.Department == nil &&
		u.Salary == nil &&
		u.JoiningDate == nil &&
		u.Skills == nil
}

type DepartmentSalary struct {
	Department string  `bson:"department"`
	AvgSalary  float64 `bson:"avg_salary"`
}
