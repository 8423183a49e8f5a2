package main

import (
	"context"

	internalstrings "github.com/amonks/taskprompt/internal/strings"
	"github.com/amonks/taskprompt/rpc"
	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/task"
)

// taskBackend is the part of task state reachable both locally and through a
// running tp server.
type taskBackend interface {
	UpdateTodos(ctx context.Context, taskID string, todos any, reason string) (rpc.UpdateResponse, error)
	ShowTodos(ctx context.Context, taskID string) (rpc.ShowResponse, error)
	SetInput(ctx context.Context, taskID, input string) (rpc.InputResponse, error)
	Sections(ctx context.Context, taskID string) (section.Sections, error)
}

// openBackend returns a server client when --addr is set, else the local
// state file.
func openBackend() (taskBackend, error) {
	if !internalstrings.IsBlank(rootAddr) {
		addr, err := rpc.ResolveAddr(appConfig, rootAddr)
		if err != nil {
			return nil, err
		}
		return rpc.NewClient(addr), nil
	}
	manager, err := openManager()
	if err != nil {
		return nil, err
	}
	return localBackend{manager: manager}, nil
}

type localBackend struct {
	manager *task.Manager
}

func (b localBackend) UpdateTodos(ctx context.Context, taskID string, todos any, reason string) (rpc.UpdateResponse, error) {
	result, err := b.manager.UpdateTodos(taskID, todos, reason)
	if err != nil {
		return rpc.UpdateResponse{}, err
	}
	return rpc.UpdateResponse{
		TaskID:   result.TaskID,
		Revision: result.Revision,
		Previous: result.Previous,
		List:     result.Summary,
	}, nil
}

func (b localBackend) ShowTodos(ctx context.Context, taskID string) (rpc.ShowResponse, error) {
	stored, err := b.manager.Task(taskID)
	if err != nil {
		return rpc.ShowResponse{}, err
	}
	return rpc.ShowResponse{
		TaskID:   stored.ID,
		Revision: stored.Revision,
		Reason:   stored.Reason,
		List:     stored.Summary(),
	}, nil
}

func (b localBackend) SetInput(ctx context.Context, taskID, input string) (rpc.InputResponse, error) {
	stored, err := b.manager.SetInput(taskID, input)
	if err != nil {
		return rpc.InputResponse{}, err
	}
	return rpc.InputResponse{TaskID: stored.ID, Reminder: stored.Reminder()}, nil
}

func (b localBackend) Sections(ctx context.Context, taskID string) (section.Sections, error) {
	return b.manager.Sections(taskID)
}
