package employees

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/gcs"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools"
)

const (
	defaultEmployeeID     = "0"
	defaultEmployeeFields = "firstName,lastName,email,jobTitle"
	defaultPhotoSize      = "medium"
	defaultGoalFilter     = "all"

	// BambooHR serves photos as JPEG unless stated otherwise
	defaultPhotoType = "image/jpeg"
)

var (
	photoSizes  = []string{"original", "large", "medium", "small", "xs", "tiny"}
	goalFilters = []string{"open", "closed", "all"}
)

func init() {
	RegisterGetEmployee()
	RegisterGetEmployeePhoto()
	RegisterGetEmployeeDirectory()
	RegisterGetEmployeeGoals()
}

// RegisterGetEmployee registers the get-employee tool
func RegisterGetEmployee() {
	const description = "Get employee data with customizable field selection. Returns employee object with fields like displayName, firstName, lastName, jobTitle, department, division, location, supervisor, photoUrl, and many more based on the 'fields' parameter."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-employee",
		Title:       "Get Employee",
		Description: description,
		Profile:     "employees",
		Action:      "getting employee",
		Schema: mcp.NewTool("get-employee",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Employee"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("id",
				mcp.DefaultString(defaultEmployeeID),
				mcp.Description(`Employee ID (use "0" for current user associated with API key)`)),
			mcp.WithString("fields",
				mcp.DefaultString(defaultEmployeeFields),
				mcp.Description("Comma-separated list of fields to retrieve. Available fields include: displayName, firstName, lastName, preferredName, email, workEmail, jobTitle, department, division, location, workPhone, supervisor, linkedIn, pronouns, photoUploaded, photoUrl, canUploadPhoto, and many more.")),
			mcp.WithBoolean("onlyCurrent",
				mcp.Description("Set to false to return future dated values from history table fields")),
		),
		Handler: getEmployee,
	})
}

func getEmployee(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	id := tools.StringArg(args, "id", defaultEmployeeID)
	params := bamboo.Params{
		"fields": tools.StringArg(args, "fields", defaultEmployeeFields),
	}

	onlyCurrent, ok, err := tools.OptionalBoolArg(args, "onlyCurrent")
	if err != nil {
		return nil, err
	}
	if ok {
		params["onlyCurrent"] = boolFlag(onlyCurrent)
	}

	client, err := tools.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	var employee bamboo.Employee
	if err := client.GetJSON(ctx, "/employees/"+tools.PathSegment(id), params, &employee); err != nil {
		return nil, err
	}

	return tools.SuccessResult(employee), nil
}

// boolFlag renders a bool the way BambooHR query flags expect
func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// RegisterGetEmployeePhoto registers the get-employee-photo tool
func RegisterGetEmployeePhoto() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-employee-photo",
		Title:       "Get Employee Photo",
		Description: "Get an employee photo by size",
		Profile:     "employees",
		Action:      "getting employee photo",
		Schema: mcp.NewTool("get-employee-photo",
			mcp.WithDescription("Get an employee photo by size. Small photos are returned inline as a base64 data URL; large ones as a download link."),
			mcp.WithTitleAnnotation("Get Employee Photo"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("employeeId",
				mcp.Required(),
				mcp.Description("The employee ID to get the photo for")),
			mcp.WithString("size",
				mcp.Enum(photoSizes...),
				mcp.DefaultString(defaultPhotoSize),
				mcp.Description("Photo size")),
		),
		Handler: getEmployeePhoto,
	})
}

func getEmployeePhoto(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	employeeID, err := tools.RequiredStringArg(args, "employeeId")
	if err != nil {
		return nil, err
	}
	size := tools.StringArg(args, "size", defaultPhotoSize)
	if err := tools.ValidateEnum("size", size, photoSizes...); err != nil {
		return nil, err
	}

	client, err := tools.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	photo, err := client.GetBinary(ctx, fmt.Sprintf("/employees/%s/photo/%s", tools.PathSegment(employeeID), size), nil)
	if err != nil {
		return nil, err
	}

	contentType := photoContentType(photo)
	result := map[string]any{
		"message":    fmt.Sprintf("Employee photo retrieved successfully (%d bytes)", len(photo)),
		"size":       size,
		"employeeId": employeeID,
		"bytes":      len(photo),
	}

	upload, err := gcs.MaybeOffload(ctx, photo, contentType, "get-employee-photo")
	if err != nil {
		return nil, err
	}
	if upload != nil {
		return tools.SuccessResult(upload.Merge(result)), nil
	}

	result["data"] = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(photo)
	return tools.SuccessResult(result), nil
}

// photoContentType sniffs the image type, falling back to JPEG when the
// bytes are not a recognizable image.
func photoContentType(photo []byte) string {
	detected := mimetype.Detect(photo).String()
	if strings.HasPrefix(detected, "image/") {
		return detected
	}
	return defaultPhotoType
}

// RegisterGetEmployeeDirectory registers the get-employee-directory tool
func RegisterGetEmployeeDirectory() {
	const description = "Get the company-wide employee directory. Returns array of employee objects with comprehensive information including displayName, jobTitle, department, division, location, supervisor, workEmail, photoUrl, and more."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-employee-directory",
		Title:       "Get Employee Directory",
		Description: description,
		Profile:     "employees",
		Action:      "getting employee directory",
		Schema: mcp.NewTool("get-employee-directory",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Employee Directory"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			client, err := tools.GetClient(ctx)
			if err != nil {
				return nil, err
			}

			var directory json.RawMessage
			if err := client.GetJSON(ctx, "/employees/directory", nil, &directory); err != nil {
				return nil, err
			}
			if len(directory) == 0 || string(directory) == "null" {
				return tools.SuccessResult(map[string]any{"employees": []any{}}), nil
			}

			return tools.SuccessResult(directory), nil
		},
	})
}

// RegisterGetEmployeeGoals registers the get-employee-goals tool
func RegisterGetEmployeeGoals() {
	const description = "Get performance goals and objectives for an employee. Returns goal objects with title, description, percentComplete, status, dueDate, milestones (for milestone-based goals), and progress tracking information."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-employee-goals",
		Title:       "Get Employee Goals",
		Description: description,
		Profile:     "employees",
		Action:      "getting employee goals",
		Schema: mcp.NewTool("get-employee-goals",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Employee Goals"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("employeeId",
				mcp.Required(),
				mcp.Description("The employee ID to get goals for")),
			mcp.WithString("filter",
				mcp.Enum(goalFilters...),
				mcp.DefaultString(defaultGoalFilter),
				mcp.Description("Filter goals by status")),
		),
		Handler: func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			employeeID, err := tools.RequiredStringArg(args, "employeeId")
			if err != nil {
				return nil, err
			}
			filter := tools.StringArg(args, "filter", defaultGoalFilter)
			if err := tools.ValidateEnum("filter", filter, goalFilters...); err != nil {
				return nil, err
			}

			// "all" is the API default and is not sent
			params := bamboo.Params{}
			if filter != defaultGoalFilter {
				params["filter"] = filter
			}

			client, err := tools.GetClient(ctx)
			if err != nil {
				return nil, err
			}

			var goals json.RawMessage
			path := fmt.Sprintf("/performance/employees/%s/goals", tools.PathSegment(employeeID))
			if err := client.GetJSON(ctx, path, params, &goals); err != nil {
				return nil, err
			}

			return tools.SuccessResult(goals), nil
		},
	})
}
