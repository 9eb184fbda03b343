package service

import (
	"context"
	"fmt"

	"hdbagent/internal/model"
)

// apologyAnswer is the canned user-facing reply for unroutable requests.
const apologyAnswer = "Sorry, I can't handle that request yet."

// Tool is a capability the agent can dispatch to. Invoke never panics and
// never returns an error: per-request failures are reported inside the
// payload.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, args model.RouteArgs) model.ToolResult
}

// Registry maps tool identifiers to implementations. Adding a tool means
// registering it here, not editing the dispatch logic.
type Registry map[string]Tool

// NewRegistry builds a registry from the given tools.
func NewRegistry(tools ...Tool) Registry {
	reg := make(Registry, len(tools))
	for _, t := range tools {
		reg[t.Name()] = t
	}
	return reg
}

// Agent composes router, tool dispatch and writer into one
// request/response cycle. Each stage runs at most once per request.
type Agent struct {
	router *Router
	tools  Registry
	writer *Writer
}

// NewAgent creates the orchestrator.
func NewAgent(router *Router, tools Registry, writer *Writer) *Agent {
	return &Agent{router: router, tools: tools, writer: writer}
}

// Run executes the full router → tool → writer chain for one user query.
// Three terminal outcomes: the router's own final answer, an unknown-tool
// error payload with a canned apology, or a tool result with composed
// prose. Only a writer/backend failure returns an error.
func (a *Agent) Run(ctx context.Context, userText string) (*model.AgentResponse, error) {
	route := a.router.Route(ctx, userText)

	if route.Tool == model.ToolFinal {
		return &model.AgentResponse{
			Route:  route,
			Data:   model.FinalResult{Tool: model.ToolFinal, Args: route.Args},
			Answer: route.Args.Answer,
		}, nil
	}

	tool, ok := a.tools[route.Tool]
	if !ok {
		return &model.AgentResponse{
			Route:  route,
			Data:   model.ToolError{Error: fmt.Sprintf("Unknown tool '%s'", route.Tool)},
			Answer: apologyAnswer,
		}, nil
	}

	data := tool.Invoke(ctx, route.Args)

	answer, err := a.writer.Write(ctx, data, userText)
	if err != nil {
		return nil, fmt.Errorf("failed to compose answer: %w", err)
	}

	return &model.AgentResponse{Route: route, Data: data, Answer: answer}, nil
}
