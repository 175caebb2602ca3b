package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"go-employee/internal/employee"
	employeeerrors "go-employee/internal/employee/errors"
	"go-employee/internal/middleware"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeService struct {
	CreateFn           func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	GetByIDFn          func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	UpdateFn           func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	DeleteFn           func(ctx context.Context, id string) error
	ListByDepartmentFn func(ctx context.Context, department string, q employee.ListByDepartmentQuery) ([]employee.EmployeeResponse, error)
	AverageSalaryFn    func(ctx context.Context) ([]employee.DepartmentSalaryResponse, error)
	SearchBySkillsFn   func(ctx context.Context, skills []string) ([]employee.EmployeeResponse, error)
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakeEmployeeService) ListByDepartment(ctx context.Context, department string, q employee.ListByDepartmentQuery) ([]employee.EmployeeResponse, error) {
	return f.ListByDepartmentFn(ctx, department, q)
}
func (f *fakeEmployeeService) AverageSalaryByDepartment(ctx context.Context) ([]employee.DepartmentSalaryResponse, error) {
	return f.AverageSalaryFn(ctx)
}
func (f *fakeEmployeeService) SearchBySkills(ctx context.Context, skills []string) ([]employee.EmployeeResponse, error) {
	return f.SearchBySkillsFn(ctx, skills)
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newRoutedEngine(svc employee.Service) *gin.Engine {
	r := setupRouter()
	employee.RegisterRoutes(r.Group(""), employee.NewHandler(svc), employee.RouteConfig{})
	return r
}

func doRequest(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, apiEnvelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env apiEnvelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

const createBody = `{"employee_id":"E1","name":"Ada","department":"Eng","salary":100,"joining_date":"2024-01-15","skills":["Python","SQL"]}`

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "E1", req.EmployeeID)
				require.NotNil(t, req.Salary)
				assert.Equal(t, 100.0, *req.Salary)
				return employee.EmployeeResponse{ID: "abc", EmployeeID: "E1", Name: "Ada"}, nil
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodPost, "/employees", createBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Ok)
		var data employee.EmployeeResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "abc", data.ID)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeAlreadyExists
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodPost, "/employees", createBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Ok)
		assert.Equal(t, "CONFLICT", env.Error.Code)
		assert.Equal(t, "Employee ID already exists", env.Error.Message)
	})

	t.Run("missing field", func(t *testing.T) {
		svc := &fakeEmployeeService{}

		w, env := doRequest(newRoutedEngine(svc), http.MethodPost, "/employees",
			`{"employee_id":"E1","department":"Eng","salary":100,"joining_date":"2024-01-15","skills":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative salary", func(t *testing.T) {
		svc := &fakeEmployeeService{}

		w, env := doRequest(newRoutedEngine(svc), http.MethodPost, "/employees",
			`{"employee_id":"E1","name":"Ada","department":"Eng","salary":-1,"joining_date":"2024-01-15","skills":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := &fakeEmployeeService{}

		w, env := doRequest(newRoutedEngine(svc), http.MethodPost, "/employees", `{"employee_id":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("unexpected error", func(t *testing.T) {
		svc := &fakeEmployeeService{
			CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, errors.New("boom")
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodPost, "/employees", createBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	})
}

func TestEmployeeHandler_Create_StoresIdempotentResponse(t *testing.T) {
	db, mock := redismock.NewClientMock()
	resp := employee.EmployeeResponse{ID: "abc", EmployeeID: "E1", Skills: []string{}}
	payload, _ := json.Marshal(resp)

	mock.ExpectSet("idemp:/employees:k1", payload, 24*time.Hour).SetVal("OK")
	mock.ExpectDel("idemp:/employees:k1:lock").SetVal(1)

	svc := &fakeEmployeeService{
		CreateFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
			return resp, nil
		},
	}
	h := employee.NewHandlerWithRedis(svc, db)

	r := setupRouter()
	r.POST("/employees", func(c *gin.Context) {
		c.Set(middleware.IdempotencyCacheKey, "idemp:/employees:k1")
		c.Set(middleware.IdempotencyLockKey, "idemp:/employees:k1:lock")
		c.Next()
	}, h.Create)

	w, _ := doRequest(r, http.MethodPost, "/employees", createBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeHandler_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
				assert.Equal(t, "E1", id)
				return employee.EmployeeResponse{EmployeeID: "E1"}, nil
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/E1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Ok)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/E404", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Employee not found", env.Error.Message)
	})
}

func TestEmployeeHandler_Update(t *testing.T) {
	t.Run("partial body", func(t *testing.T) {
		svc := &fakeEmployeeService{
			UpdateFn: func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "E1", id)
				require.NotNil(t, req.Salary)
				assert.Equal(t, 250.0, *req.Salary)
				assert.Nil(t, req.Name)
				return employee.EmployeeResponse{EmployeeID: "E1", Salary: 250}, nil
			},
		}

		w, _ := doRequest(newRoutedEngine(svc), http.MethodPut, "/employees/E1", `{"salary":250}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			UpdateFn: func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
			},
		}

		w, _ := doRequest(newRoutedEngine(svc), http.MethodPut, "/employees/E404", `{"name":"X"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEmployeeHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeEmployeeService{
			DeleteFn: func(ctx context.Context, id string) error { return nil },
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodDelete, "/employees/E1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Employee deleted"}`, string(env.Data))
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeEmployeeService{
			DeleteFn: func(ctx context.Context, id string) error { return employeeerrors.ErrEmployeeNotFound },
		}

		w, _ := doRequest(newRoutedEngine(svc), http.MethodDelete, "/employees/E1", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEmployeeHandler_ListByDepartment(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := &fakeEmployeeService{
			ListByDepartmentFn: func(ctx context.Context, department string, q employee.ListByDepartmentQuery) ([]employee.EmployeeResponse, error) {
				assert.Equal(t, "Eng", department)
				assert.Equal(t, int64(0), q.Skip)
				assert.Equal(t, int64(10), q.Limit)
				return []employee.EmployeeResponse{}, nil
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/department/Eng", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(env.Data))
		assert.Equal(t, float64(10), env.Meta["limit"])
	})

	t.Run("explicit paging", func(t *testing.T) {
		svc := &fakeEmployeeService{
			ListByDepartmentFn: func(ctx context.Context, department string, q employee.ListByDepartmentQuery) ([]employee.EmployeeResponse, error) {
				assert.Equal(t, int64(5), q.Skip)
				assert.Equal(t, int64(2), q.Limit)
				return []employee.EmployeeResponse{{EmployeeID: "E9"}}, nil
			},
		}

		w, env := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/department/Eng?skip=5&limit=2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), env.Meta["count"])
	})

	for _, query := range []string{"skip=-1", "limit=0", "limit=101", "limit=abc"} {
		t.Run("rejects "+query, func(t *testing.T) {
			svc := &fakeEmployeeService{}

			w, env := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/department/Eng?"+query, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		})
	}
}

func TestEmployeeHandler_AverageSalary(t *testing.T) {
	svc := &fakeEmployeeService{
		AverageSalaryFn: func(ctx context.Context) ([]employee.DepartmentSalaryResponse, error) {
			return []employee.DepartmentSalaryResponse{{Department: "Eng", AvgSalary: 150}}, nil
		},
		GetByIDFn: func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
			t.Fatalf("/avg/salary must not reach GetByID, got id %q", id)
			return employee.EmployeeResponse{}, nil
		},
	}

	w, env := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/avg/salary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"department":"Eng","avg_salary":150}]`, string(env.Data))
}

func TestEmployeeHandler_SearchBySkills(t *testing.T) {
	t.Run("splits and trims", func(t *testing.T) {
		svc := &fakeEmployeeService{
			SearchBySkillsFn: func(ctx context.Context, skills []string) ([]employee.EmployeeResponse, error) {
				assert.Equal(t, []string{"Python", "SQL"}, skills)
				return []employee.EmployeeResponse{}, nil
			},
		}

		w, _ := doRequest(newRoutedEngine(svc), http.MethodGet, "/employees/search/skills?skills=Python,%20SQL", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing parameter", func(t *testing.T) {
		w, env := doRequest(newRoutedEngine(&fakeEmployeeService{}), http.MethodGet, "/employees/search/skills", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("only separators", func(t *testing.T) {
		w, env := doRequest(newRoutedEngine(&fakeEmployeeService{}), http.MethodGet, "/employees/search/skills?skills=,,", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "At least one skill is required", env.Error.Message)
	})
}
