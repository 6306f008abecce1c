package timeoff

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools"
)

var (
	requestActions  = []string{"view", "approve"}
	requestStatuses = []string{"approved", "denied", "superceded", "requested", "canceled"}
)

func init() {
	RegisterEstimateTimeOffBalance()
	RegisterGetTimeOffRequests()
	RegisterGetWhosOut()
}

// RegisterEstimateTimeOffBalance registers the estimate-time-off-balance tool
func RegisterEstimateTimeOffBalance() {
	const description = "Calculate future time off balances for an employee. Returns array of balance objects with timeOffType, name, units (days/hours), balance, end date, policyType (accruing/discretionary/manual), and usedYearToDate."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "estimate-time-off-balance",
		Title:       "Estimate Time Off Balance",
		Description: description,
		Profile:     "time_off",
		Action:      "estimating time off balance",
		Schema: mcp.NewTool("estimate-time-off-balance",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Estimate Time Off Balance"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("employeeId",
				mcp.Required(),
				mcp.Description("The employee ID to estimate time off balance for")),
			mcp.WithString("date",
				mcp.Description("Future date to estimate balance for (YYYY-MM-DD format)")),
		),
		Handler: estimateTimeOffBalance,
	})
}

func estimateTimeOffBalance(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	employeeID, err := tools.RequiredStringArg(args, "employeeId")
	if err != nil {
		return nil, err
	}

	params := bamboo.Params{}
	if date := tools.StringArg(args, "date", ""); date != "" {
		if err := tools.ValidateDate("date", date); err != nil {
			return nil, err
		}
		params["date"] = date
	}

	client, err := tools.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	var balances json.RawMessage
	path := fmt.Sprintf("/employees/%s/time_off/calculator", tools.PathSegment(employeeID))
	if err := client.GetJSON(ctx, path, params, &balances); err != nil {
		return nil, err
	}

	return tools.SuccessResult(balances), nil
}

// RegisterGetTimeOffRequests registers the get-time-off-requests tool
func RegisterGetTimeOffRequests() {
	const description = "Retrieve and filter time off requests. Returns request objects with id, employeeId, name, status, start, end, created, type, amount, actions, dates and notes. Supports filtering by status, employee, date range, and type."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-time-off-requests",
		Title:       "Get Time Off Requests",
		Description: description,
		Profile:     "time_off",
		Action:      "getting time off requests",
		Schema: mcp.NewTool("get-time-off-requests",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Time Off Requests"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("id",
				mcp.Description("Specific request ID to limit the response to")),
			mcp.WithString("action",
				mcp.Enum(requestActions...),
				mcp.Description("Limit to requests that the user has a particular level of access to")),
			mcp.WithString("employeeId",
				mcp.Description("Specific employee ID to filter requests for")),
			mcp.WithString("start",
				mcp.Description("Start date filter (YYYY-MM-DD format)")),
			mcp.WithString("end",
				mcp.Description("End date filter (YYYY-MM-DD format)")),
			mcp.WithString("status",
				mcp.Enum(requestStatuses...),
				mcp.Description("Filter by request status")),
			mcp.WithString("type",
				mcp.Description("Filter by time off type ID")),
		),
		Handler: getTimeOffRequests,
	})
}

func getTimeOffRequests(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	params := bamboo.Params{}

	id, ok, err := tools.OptionalIntArg(args, "id")
	if err != nil {
		return nil, err
	}
	if ok {
		params["id"] = strconv.FormatInt(id, 10)
	}

	if action := tools.StringArg(args, "action", ""); action != "" {
		if err := tools.ValidateEnum("action", action, requestActions...); err != nil {
			return nil, err
		}
		params["action"] = action
	}
	if employeeID := tools.StringArg(args, "employeeId", ""); employeeID != "" {
		params["employeeId"] = employeeID
	}
	for _, key := range []string{"start", "end"} {
		if date := tools.StringArg(args, key, ""); date != "" {
			if err := tools.ValidateDate(key, date); err != nil {
				return nil, err
			}
			params[key] = date
		}
	}
	if status := tools.StringArg(args, "status", ""); status != "" {
		if err := tools.ValidateEnum("status", status, requestStatuses...); err != nil {
			return nil, err
		}
		params["status"] = status
	}
	if typeID := tools.StringArg(args, "type", ""); typeID != "" {
		params["type"] = typeID
	}

	client, err := tools.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	var requests json.RawMessage
	if err := client.GetJSON(ctx, "/time_off/requests", params, &requests); err != nil {
		return nil, err
	}

	return tools.SuccessResult(requests), nil
}

// WhosOutSummary counts the events of a who's out response
type WhosOutSummary struct {
	TotalEvents  int       `json:"totalEvents"`
	TimeOffCount int       `json:"timeOffCount"`
	HolidayCount int       `json:"holidayCount"`
	DateRange    DateRange `json:"dateRange"`
}

// DateRange echoes the requested window, describing the API defaults when
// a bound was not given.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WhosOutResult is the get-whos-out tool output
type WhosOutResult struct {
	Summary WhosOutSummary        `json:"summary"`
	Events  []json.RawMessage `json:"events"`
}

// RegisterGetWhosOut registers the get-whos-out tool
func RegisterGetWhosOut() {
	const description = "View upcoming time off and holidays for a date range. Returns array of mixed events: timeOff events (id, type, employeeId, name, start, end) and holiday events (id, type, name, start, end) with summary counts."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-whos-out",
		Title:       "Get Who's Out",
		Description: description,
		Profile:     "time_off",
		Action:      "getting who's out",
		Schema: mcp.NewTool("get-whos-out",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Who's Out"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("start",
				mcp.Description("Start date (YYYY-MM-DD format) - defaults to current date")),
			mcp.WithString("end",
				mcp.Description("End date (YYYY-MM-DD format) - defaults to 14 days from start date")),
		),
		Handler: getWhosOut,
	})
}

func getWhosOut(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	params := bamboo.Params{}
	rangeLabel := DateRange{Start: "current date", End: "14 days from start"}

	start := tools.StringArg(args, "start", "")
	if start != "" {
		if err := tools.ValidateDate("start", start); err != nil {
			return nil, err
		}
		params["start"] = start
		rangeLabel.Start = start
	}
	end := tools.StringArg(args, "end", "")
	if end != "" {
		if err := tools.ValidateDate("end", end); err != nil {
			return nil, err
		}
		params["end"] = end
		rangeLabel.End = end
	}

	client, err := tools.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	var events []json.RawMessage
	if err := client.GetJSON(ctx, "/time_off/whos_out", params, &events); err != nil {
		return nil, err
	}

	return tools.SuccessResult(summarize(events, rangeLabel)), nil
}

// summarize counts events by type; events are returned exactly as received.
func summarize(events []json.RawMessage, dateRange DateRange) WhosOutResult {
	if events == nil {
		events = []json.RawMessage{}
	}

	summary := WhosOutSummary{TotalEvents: len(events), DateRange: dateRange}
	for _, event := range events {
		switch bamboo.EventType(event) {
		case bamboo.EventTypeTimeOff:
			summary.TimeOffCount++
		case bamboo.EventTypeHoliday:
			summary.HolidayCount++
		}
	}

	return WhosOutResult{Summary: summary, Events: events}
}
