package employee_test

import (
	"context"
	"testing"

	"go-employee/internal/employee"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureSchema(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("creates collection and indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		assert.NoError(mt, employee.EnsureSchema(ctx, mt.DB))
	})

	mt.Run("existing collection is tolerated", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    48,
				Name:    "NamespaceExists",
				Message: "Collection already exists",
			}),
			mtest.CreateSuccessResponse(),
		)

		assert.NoError(mt, employee.EnsureSchema(ctx, mt.DB))
	})

	mt.Run("other errors are returned", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    13,
				Name:    "Unauthorized",
				Message: "not authorized",
			}),
		)

		assert.Error(mt, employee.EnsureSchema(ctx, mt.DB))
	})

	mt.Run("index failure is returned", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    85,
				Name:    "IndexOptionsConflict",
				Message: "index options conflict",
			}),
		)

		assert.Error(mt, employee.EnsureSchema(ctx, mt.DB))
	})
}

func TestEmployeeIndexes(t *testing.T) {
	names := make([]string, 0, len(employee.EmployeeIndexes))
	for _, idx := range employee.EmployeeIndexes {
		if assert.NotNil(t, idx.Options) && assert.NotNil(t, idx.Options.Name) {
			names = append(names, *idx.Options.Name)
		}
	}
	assert.Equal(t, []string{
		employee.UniqueEmployeeIDIndex,
		employee.DepartmentJoiningDateIndex,
		employee.SkillsIndex,
	}, names)

	unique := employee.EmployeeIndexes[0].Options.Unique
	if assert.NotNil(t, unique) {
		assert.True(t, *unique)
	}
}
