package employees

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/gcs"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools/testutil"
)

var (
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R'}
)

func call(t *testing.T, mock *testutil.MockClient, name string, args map[string]any) (string, bool) {
	t.Helper()
	ctx := tools.WithClient(context.Background(), mock)
	result, err := tools.CallTool(ctx, name, args)
	require.NoError(t, err)
	return testutil.ResultText(t, result), result.IsError
}

func TestGetEmployee(t *testing.T) {
	employee := map[string]any{
		"id":        "123",
		"firstName": "John",
		"lastName":  "Doe",
		"jobTitle":  "Software Engineer",
	}

	t.Run("uses defaults", func(t *testing.T) {
		mock := &testutil.MockClient{GetJSONFunc: testutil.JSONResponse(employee)}

		text, isError := call(t, mock, "get-employee", nil)
		require.False(t, isError, text)

		calls := mock.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "/employees/0", calls[0].Path)
		assert.Equal(t, bamboo.Params{"fields": "firstName,lastName,email,jobTitle"}, calls[0].Params)

		expected, _ := json.Marshal(employee)
		assert.JSONEq(t, string(expected), text)
	})

	t.Run("passes fields and id", func(t *testing.T) {
		mock := &testutil.MockClient{GetJSONFunc: testutil.JSONResponse(employee)}

		_, isError := call(t, mock, "get-employee", map[string]any{
			"id":     "123",
			"fields": "firstName,lastName,department",
		})
		require.False(t, isError)

		calls := mock.Calls()
		assert.Equal(t, "/employees/123", calls[0].Path)
		assert.Equal(t, "firstName,lastName,department", calls[0].Params["fields"])
		assert.NotContains(t, calls[0].Params, "onlyCurrent")
	})

	t.Run("numeric id", func(t *testing.T) {
		mock := &testutil.MockClient{}
		_, isError := call(t, mock, "get-employee", map[string]any{"id": float64(42)})
		require.False(t, isError)
		assert.Equal(t, "/employees/42", mock.Calls()[0].Path)
	})

	t.Run("onlyCurrent flag", func(t *testing.T) {
		for value, flag := range map[bool]string{true: "1", false: "0"} {
			mock := &testutil.MockClient{}
			_, isError := call(t, mock, "get-employee", map[string]any{"onlyCurrent": value})
			require.False(t, isError)
			assert.Equal(t, flag, mock.Calls()[0].Params["onlyCurrent"])
		}
	})

	t.Run("invalid onlyCurrent", func(t *testing.T) {
		mock := &testutil.MockClient{}
		text, isError := call(t, mock, "get-employee", map[string]any{"onlyCurrent": "sometimes"})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee: onlyCurrent must be a boolean", text)
		assert.Empty(t, mock.Calls())
	})

	t.Run("classified error", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetJSONFunc: func(context.Context, string, bamboo.Params, any) error {
				return bamboo.ClassifyStatus(404, nil)
			},
		}
		text, isError := call(t, mock, "get-employee", map[string]any{"id": "999"})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee: Resource not found.", text)
	})

	t.Run("non-error failure", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetJSONFunc: func(context.Context, string, bamboo.Params, any) error {
				panic("String error")
			},
		}
		text, isError := call(t, mock, "get-employee", nil)
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee: Unknown error", text)
	})

	t.Run("missing client", func(t *testing.T) {
		result, err := tools.CallTool(context.Background(), "get-employee", nil)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "Error getting employee: "+tools.ErrNoClient.Error(), testutil.ResultText(t, result))
	})
}

func TestGetEmployeePhoto(t *testing.T) {
	t.Run("returns data URL", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetBinaryFunc: func(context.Context, string, bamboo.Params) ([]byte, error) {
				return jpegBytes, nil
			},
		}

		text, isError := call(t, mock, "get-employee-photo", map[string]any{"employeeId": "123"})
		require.False(t, isError, text)

		calls := mock.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "GET_BINARY", calls[0].Method)
		assert.Equal(t, "/employees/123/photo/medium", calls[0].Path)
		assert.Nil(t, calls[0].Params)

		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &result))
		assert.Equal(t, "Employee photo retrieved successfully (12 bytes)", result["message"])
		assert.Equal(t, "medium", result["size"])
		assert.Equal(t, "123", result["employeeId"])
		assert.Equal(t, float64(len(jpegBytes)), result["bytes"])
		assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(jpegBytes), result["data"])
	})

	t.Run("detects png", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetBinaryFunc: func(context.Context, string, bamboo.Params) ([]byte, error) {
				return pngBytes, nil
			},
		}

		text, isError := call(t, mock, "get-employee-photo", map[string]any{"employeeId": "5", "size": "tiny"})
		require.False(t, isError, text)
		assert.Equal(t, "/employees/5/photo/tiny", mock.Calls()[0].Path)
		assert.Contains(t, text, `"data": "data:image/png;base64,`)
	})

	t.Run("unrecognized bytes are labelled jpeg", func(t *testing.T) {
		assert.Equal(t, "image/jpeg", photoContentType([]byte("plain text")))
		assert.Equal(t, "image/jpeg", photoContentType(nil))
	})

	t.Run("invalid size", func(t *testing.T) {
		mock := &testutil.MockClient{}
		text, isError := call(t, mock, "get-employee-photo", map[string]any{"employeeId": "1", "size": "huge"})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee photo: size must be one of: original, large, medium, small, xs, tiny", text)
		assert.Empty(t, mock.Calls())
	})

	t.Run("missing employee id", func(t *testing.T) {
		mock := &testutil.MockClient{}
		text, isError := call(t, mock, "get-employee-photo", map[string]any{})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee photo: employeeId parameter is required", text)
	})

	t.Run("api failure", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetBinaryFunc: func(context.Context, string, bamboo.Params) ([]byte, error) {
				return nil, bamboo.ClassifyTransport(errors.New("socket hang up"))
			},
		}
		text, isError := call(t, mock, "get-employee-photo", map[string]any{"employeeId": "1"})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee photo: Network error: socket hang up", text)
	})

	t.Run("large photo is offloaded", func(t *testing.T) {
		mgr, err := gcs.NewManager(context.Background(), &gcs.Config{SizeThreshold: 4})
		require.NoError(t, err)

		mock := &testutil.MockClient{
			GetBinaryFunc: func(context.Context, string, bamboo.Params) ([]byte, error) {
				return jpegBytes, nil
			},
		}
		ctx := gcs.WithGCSManager(tools.WithClient(context.Background(), mock), mgr)

		result, err := tools.CallTool(ctx, "get-employee-photo", map[string]any{"employeeId": "9"})
		require.NoError(t, err)
		require.False(t, result.IsError)

		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(testutil.ResultText(t, result)), &body))
		assert.NotContains(t, body, "data")
		assert.Equal(t, true, body["is_temp_file"])
		assert.Equal(t, "image/jpeg", body["content_type"])

		path, _ := body["resource_link"].(string)
		require.NotEmpty(t, path)
		t.Cleanup(func() { os.Remove(path) })
		assert.True(t, strings.HasSuffix(path, ".jpg"))
	})
}

func TestGetEmployeeDirectory(t *testing.T) {
	t.Run("passes no params", func(t *testing.T) {
		directory := map[string]any{
			"fields": []map[string]any{{"id": "displayName", "type": "text", "name": "Display Name"}},
			"employees": []map[string]any{
				{"id": "1", "displayName": "John Doe"},
				{"id": "2", "displayName": "Jane Smith"},
			},
		}
		mock := &testutil.MockClient{GetJSONFunc: testutil.JSONResponse(directory)}

		text, isError := call(t, mock, "get-employee-directory", nil)
		require.False(t, isError, text)

		calls := mock.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "/employees/directory", calls[0].Path)
		assert.Nil(t, calls[0].Params)

		expected, _ := json.Marshal(directory)
		assert.JSONEq(t, string(expected), text)
	})

	t.Run("unmodelled fields pass through", func(t *testing.T) {
		raw := `{
			"fields": [{"id":"displayName","type":"text","name":"Display Name","alias":"name"}],
			"employees": [{"id":7,"displayName":"John Doe","customShirtSize":"L"}],
			"generated": "2024-12-20T10:00:00Z"
		}`
		mock := &testutil.MockClient{GetJSONFunc: testutil.JSONResponse(json.RawMessage(raw))}

		text, isError := call(t, mock, "get-employee-directory", nil)
		require.False(t, isError, text)
		assert.JSONEq(t, raw, text)
	})

	t.Run("empty directory", func(t *testing.T) {
		mock := &testutil.MockClient{}
		text, isError := call(t, mock, "get-employee-directory", nil)
		require.False(t, isError)
		assert.JSONEq(t, `{"employees": []}`, text)
	})

	t.Run("api failure", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetJSONFunc: func(context.Context, string, bamboo.Params, any) error {
				return bamboo.ClassifyStatus(403, nil)
			},
		}
		text, isError := call(t, mock, "get-employee-directory", nil)
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee directory: "+bamboo.MsgForbidden, text)
	})
}

func TestGetEmployeeGoals(t *testing.T) {
	goals := `{"goals":[{"id":"1","title":"Complete project","percentComplete":75,"status":"in_progress"}]}`

	tests := []struct {
		name   string
		args   map[string]any
		params bamboo.Params
	}{
		{"default filter sends nothing", map[string]any{"employeeId": "123"}, bamboo.Params{}},
		{"all sends nothing", map[string]any{"employeeId": "123", "filter": "all"}, bamboo.Params{}},
		{"open", map[string]any{"employeeId": "123", "filter": "open"}, bamboo.Params{"filter": "open"}},
		{"closed", map[string]any{"employeeId": "123", "filter": "closed"}, bamboo.Params{"filter": "closed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &testutil.MockClient{GetJSONFunc: testutil.JSONResponse(json.RawMessage(goals))}

			text, isError := call(t, mock, "get-employee-goals", tt.args)
			require.False(t, isError, text)

			calls := mock.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "/performance/employees/123/goals", calls[0].Path)
			assert.Equal(t, tt.params, calls[0].Params)
			assert.JSONEq(t, goals, text)
		})
	}

	t.Run("invalid filter", func(t *testing.T) {
		mock := &testutil.MockClient{}
		text, isError := call(t, mock, "get-employee-goals", map[string]any{"employeeId": "1", "filter": "pending"})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee goals: filter must be one of: open, closed, all", text)
	})

	t.Run("error value failure", func(t *testing.T) {
		mock := &testutil.MockClient{
			GetJSONFunc: func(context.Context, string, bamboo.Params, any) error {
				panic(errors.New("goal service exploded"))
			},
		}
		text, isError := call(t, mock, "get-employee-goals", map[string]any{"employeeId": "1"})
		assert.True(t, isError)
		assert.Equal(t, "Error getting employee goals: goal service exploded", text)
	})
}
