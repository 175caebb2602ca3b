package employee

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	CollectionName = "employees"

	UniqueEmployeeIDIndex      = "unique_employee_id_index"
	DepartmentJoiningDateIndex = "department_joining_date_index"
	SkillsIndex                = "skills_index"

	namespaceExists = 48
)

// employeeJSONSchema is enforced by the store on every insert and update.
var employeeJSONSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"employee_id", "name", "department", "salary", "joining_date", "skills"},
	"properties": bson.M{
		"employee_id":  bson.M{"bsonType": "string"},
		"name":         bson.M{"bsonType": "string"},
		"department":   bson.M{"bsonType": "string"},
		"salary":       bson.M{"bsonType": "double", "minimum": 0},
		"joining_date": bson.M{"bsonType": "date"},
		"skills": bson.M{
			"bsonType": "array",
			"items":    bson.M{"bsonType": "string"},
		},
	},
}

var EmployeeIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "employee_id", Value: 1}},
		Options: options.Index().SetName(UniqueEmployeeIDIndex).SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "department", Value: 1}, {Key: "joining_date", Value: -1}},
		Options: options.Index().SetName(DepartmentJoiningDateIndex),
	},
	{
		Keys:    bson.D{{Key: "skills", Value: 1}},
		Options: options.Index().SetName(SkillsIndex),
	},
}

// EnsureSchema creates the employees collection with its validator and
// indexes. An existing collection is kept as is.
func EnsureSchema(ctx context.Context, db *mongo.Database, logger ...*zap.Logger) error {
	l := zap.L().Named("employee.schema")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.schema")
	}

	opts := options.CreateCollection().SetValidator(bson.M{"$jsonSchema": employeeJSONSchema})
	err := db.CreateCollection(ctx, CollectionName, opts)
	switch {
	case err == nil:
		l.Info("collection created with schema validation", zap.String("collection", CollectionName))
	case isNamespaceExists(err):
		l.Info("collection already exists", zap.String("collection", CollectionName))
	default:
		return fmt.Errorf("create collection %s: %w", CollectionName, err)
	}

	names, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, EmployeeIndexes)
	if err != nil {
		return fmt.Errorf("create indexes on %s: %w", CollectionName, err)
	}
	l.Info("indexes ensured", zap.Strings("indexes", names))

	return nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceExists || cmdErr.Name == "NamespaceExists"
	}
	return false
}
