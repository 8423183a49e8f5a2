// Package mcpserver exposes the todo list tools to a model over the Model
// Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amonks/taskprompt/task"
	"github.com/amonks/taskprompt/todo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

const (
	// UpdateTodoListTool is the tool the todo section tells the model to call.
	UpdateTodoListTool = "update_todo_list"
	// ReadTodoListTool returns the stored list.
	ReadTodoListTool = "read_todo_list"
)

const updateTodoListDescription = `Replace the todo list for the current task.

Send the complete list every time; it replaces the stored list wholesale.
Each item needs "content" (non-empty text) and "status" (one of pending,
in_progress, completed). Items may carry an optional "id" and nested
"children" items. The legacy "title" and "done" fields are rejected.
An invalid list is rejected as a whole and the stored list is unchanged.`

// UpdateTodoListParams are the update_todo_list arguments.
type UpdateTodoListParams struct {
	TaskID string `json:"task_id" jsonschema:"The task whose todo list is replaced"`
	Todos  any    `json:"todos" jsonschema:"The complete todo list: an array of {content, status, id?, children?} items"`
	Reason string `json:"reason,omitempty" jsonschema:"Why the list changed"`
}

// ReadTodoListParams are the read_todo_list arguments.
type ReadTodoListParams struct {
	TaskID string `json:"task_id" jsonschema:"The task to read"`
}

// UpdateResult is the structured result of an accepted update.
type UpdateResult struct {
	TaskID         string `json:"task_id"`
	Revision       string `json:"revision"`
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
	Section        string `json:"section,omitempty"`
}

// Server serves the todo tools for one task manager.
type Server struct {
	manager *task.Manager
	logger  zerolog.Logger
	version string
}

// New creates a tool server.
func New(manager *task.Manager, logger zerolog.Logger, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{manager: manager, logger: logger, version: version}
}

// MCP builds the protocol server with every tool registered.
func (s *Server) MCP() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "taskprompt",
		Version: s.version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        UpdateTodoListTool,
		Description: updateTodoListDescription,
	}, s.HandleUpdateTodoList)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ReadTodoListTool,
		Description: "Return the current todo list for a task with completion counts.",
	}, s.HandleReadTodoList)

	s.logger.Debug().Strs("tools", []string{UpdateTodoListTool, ReadTodoListTool}).Msg("registered tools")
	return server
}

// Run serves the tools on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Str("state", s.manager.StatePath()).Msg("starting MCP server on stdio")
	if err := s.MCP().Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	s.logger.Info().Msg("MCP server stopped")
	return nil
}

// HandleUpdateTodoList validates and stores a new todo list.
func (s *Server) HandleUpdateTodoList(ctx context.Context, req *mcp.CallToolRequest, params UpdateTodoListParams) (*mcp.CallToolResult, any, error) {
	result, err := s.manager.UpdateTodos(params.TaskID, params.Todos, params.Reason)
	if err != nil {
		s.logger.Warn().Err(err).Str("task", params.TaskID).Msg("rejected todo update")
		return errorResult(err), nil, nil
	}

	sections, err := s.manager.Sections(result.TaskID)
	if err != nil {
		return errorResult(err), nil, nil
	}
	s.logger.Info().
		Str("task", result.TaskID).
		Str("revision", result.Revision).
		Int("total", result.Summary.TotalCount).
		Int("completed", result.Summary.CompletedCount).
		Msg("updated todo list")

	return jsonResult(UpdateResult{
		TaskID:         result.TaskID,
		Revision:       result.Revision,
		CompletedCount: result.Summary.CompletedCount,
		TotalCount:     result.Summary.TotalCount,
		Section:        sections.Todos,
	})
}

// HandleReadTodoList returns the stored list. A task with no list yields an
// empty one.
func (s *Server) HandleReadTodoList(ctx context.Context, req *mcp.CallToolRequest, params ReadTodoListParams) (*mcp.CallToolResult, any, error) {
	stored, err := s.manager.Task(params.TaskID)
	if errors.Is(err, task.ErrTaskNotFound) {
		return jsonResult(todo.Summarize(nil))
	}
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(stored.Summary())
}

func jsonResult(value any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}
}
