package meta

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/gcs"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools"
)

func init() {
	RegisterListCompanyFiles()
	RegisterGetCompanyFile()
	RegisterGetMetaFields()
}

// RegisterListCompanyFiles registers the list-company-files tool
func RegisterListCompanyFiles() {
	const description = "List all company files and categories. Returns categories with id, name, displayName and their files (id, name, originalFileName, size, dateCreated, createdBy)."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "list-company-files",
		Title:       "List Company Files",
		Description: description,
		Profile:     "company",
		Action:      "listing company files",
		Schema: mcp.NewTool("list-company-files",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("List Company Files"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: passThrough("/files/view"),
	})
}

// RegisterGetMetaFields registers the get-meta-fields tool
func RegisterGetMetaFields() {
	const description = "Get a list of all available fields in the account. Returns field objects with id, type, name, and optional alias and deprecated flags. Use it to discover which fields get-employee can request."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-meta-fields",
		Title:       "Get Meta Fields",
		Description: description,
		Profile:     "company",
		Action:      "getting meta fields",
		Schema: mcp.NewTool("get-meta-fields",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Meta Fields"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: passThrough("/meta/fields"),
	})
}

// passThrough returns a handler that relays the JSON at path unchanged
func passThrough(path string) tools.ToolHandler {
	return func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		client, err := tools.GetClient(ctx)
		if err != nil {
			return nil, err
		}

		var body json.RawMessage
		if err := client.GetJSON(ctx, path, nil, &body); err != nil {
			return nil, err
		}

		return tools.SuccessResult(body), nil
	}
}

// RegisterGetCompanyFile registers the get-company-file tool
func RegisterGetCompanyFile() {
	const description = "Download a company file by ID. Returns the file content base64 encoded, or a download link for large files. Files that are not downloadable return their JSON metadata instead."

	tools.RegisterTool(&tools.ToolRegistration{
		Name:        "get-company-file",
		Title:       "Get Company File",
		Description: description,
		Profile:     "company",
		Action:      "getting company file",
		Schema: mcp.NewTool("get-company-file",
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation("Get Company File"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("fileId",
				mcp.Required(),
				mcp.Description("The ID of the company file to retrieve")),
		),
		Handler: getCompanyFile,
	})
}

func getCompanyFile(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	fileID, err := tools.RequiredStringArg(args, "fileId")
	if err != nil {
		return nil, err
	}

	client, err := tools.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	path := "/files/" + tools.PathSegment(fileID)

	content, binErr := client.GetBinary(ctx, path, nil)
	if binErr != nil {
		// Some file IDs only resolve to metadata; the JSON error is the one reported.
		slog.Debug("Binary file download failed, retrying as JSON", "fileId", fileID, "error", binErr)

		var body json.RawMessage
		if err := client.GetJSON(ctx, path, nil, &body); err != nil {
			return nil, err
		}
		return tools.SuccessResult(body), nil
	}

	contentType := mimetype.Detect(content).String()
	result := map[string]any{
		"message":     fmt.Sprintf("Company file retrieved successfully (%d bytes)", len(content)),
		"fileId":      fileID,
		"bytes":       len(content),
		"contentType": contentType,
	}

	upload, err := gcs.MaybeOffload(ctx, content, contentType, "get-company-file")
	if err != nil {
		return nil, err
	}
	if upload != nil {
		return tools.SuccessResult(upload.Merge(result)), nil
	}

	result["data"] = base64.StdEncoding.EncodeToString(content)
	result["note"] = "File content is base64 encoded"
	return tools.SuccessResult(result), nil
}
