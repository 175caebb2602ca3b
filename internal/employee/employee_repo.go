package employee

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultListLimit = 10
	// MaxResults caps the aggregation and skill search result sets.
	MaxResults = 100
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	// Create inserts empl unless its EmployeeID is taken, in which case it
	// returns false and leaves the store untouched.
	Create(ctx context.Context, empl *Employee) (bool, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	// Update reports whether a document was modified.
	Update(ctx context.Context, employeeID string, upd EmployeeUpdate) (bool, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, employeeID string) (bool, error)
	FindByDepartment(ctx context.Context, department string, skip, limit int64) ([]Employee, error)
	AverageSalaryByDepartment(ctx context.Context) ([]DepartmentSalary, error)
	FindBySkills(ctx context.Context, skills []string) ([]Employee, error)
}

type repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &repository{coll: db.Collection(CollectionName)}
}

func byEmployeeID(employeeID string) bson.D {
	return bson.D{{Key: "employee_id", Value: employeeID}}
}

func (r *repository) Create(ctx context.Context, empl *Employee) (bool, error) {
	err := r.coll.FindOne(ctx, byEmployeeID(empl.EmployeeID),
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	// The unique index still rejects a concurrent insert of the same key.
	res, err := r.coll.InsertOne(ctx, empl)
	if err != nil {
		return false, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		empl.ID = oid
	}
	return true, nil
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error) {
	var empl Employee
	if err := r.coll.FindOne(ctx, byEmployeeID(employeeID)).Decode(&empl); err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, employeeID string, upd EmployeeUpdate) (bool, error) {
	set := setDocument(upd)
	if len(set) == 0 {
		return false, nil
	}

	res, err := r.coll.UpdateOne(ctx, byEmployeeID(employeeID), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *repository) Delete(ctx context.Context, employeeID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, byEmployeeID(employeeID))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *repository) FindByDepartment(ctx context.Context, department string, skip, limit int64) ([]Employee, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "joining_date", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "department", Value: department}}, opts)
	if err != nil {
		return nil, err
	}

	empls := make([]Employee, 0)
	if err := cursor.All(ctx, &empls); err != nil {
		return nil, err
	}
	return empls, nil
}

func (r *repository) AverageSalaryByDepartment(ctx context.Context) ([]DepartmentSalary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department"},
			{Key: "avg_salary", Value: bson.D{{Key: "$avg", Value: "$salary"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "department", Value: "$_id"},
			{Key: "avg_salary", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "department", Value: 1}}}},
		{{Key: "$limit", Value: MaxResults}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	rows := make([]DepartmentSalary, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindBySkills(ctx context.Context, skills []string) ([]Employee, error) {
	empls := make([]Employee, 0)
	if len(skills) == 0 {
		return empls, nil
	}

	filter := bson.D{{Key: "skills", Value: bson.D{{Key: "$all", Value: skills}}}}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetLimit(MaxResults))
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &empls); err != nil {
		return nil, err
	}
	return empls, nil
}

// setDocument builds the $set payload from the supplied fields only.
func setDocument(upd EmployeeUpdate) bson.D {
	set := bson.D{}
	if upd.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *upd.Name})
	}
	if upd.Department != nil {
		set = append(set, bson.E{Key: "department", Value: *upd.Department})
	}
	if upd.Salary != nil {
		set = append(set, bson.E{Key: "salary", Value: *upd.Salary})
	}
	if upd.JoiningDate != nil {
		set = append(set, bson.E{Key: "joining_date", Value: *upd.JoiningDate})
	}
	if upd.Skills != nil {
		skills := *upd.Skills
		if skills == nil {
			skills = []string{}
		}
		set = append(set, bson.E{Key: "skills", Value: skills})
	}
	return set
}
