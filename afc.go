package genai

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/google-gemini/genai-go/internal/stream"
)

// DefaultMaxRemoteCalls is the automatic function calling budget applied
// when MaximumRemoteCalls is unset.
const DefaultMaxRemoteCalls = 10

// CallableTool is a tool with an in-process handler: it returns its Tool
// declaration and, given a batch of FunctionCalls it owns, returns the
// corresponding FunctionResponse parts.
type CallableTool interface {
	Declaration(ctx context.Context) (Tool, error)
	Call(ctx context.Context, calls []FunctionCall) ([]Part, error)
}

// InlineCallableTool is a declaration-plus-handler-map CallableTool.
type InlineCallableTool struct {
	declarations []FunctionDeclaration
	handlers     map[string]func(ctx context.Context, args any) (any, error)
}

func NewInlineCallableTool(declarations ...FunctionDeclaration) *InlineCallableTool {
	return &InlineCallableTool{declarations: declarations, handlers: map[string]func(context.Context, any) (any, error){}}
}

func (t *InlineCallableTool) WithHandler(name string, handler func(ctx context.Context, args any) (any, error)) *InlineCallableTool {
	t.handlers[name] = handler
	return t
}

func (t *InlineCallableTool) Declaration(_ context.Context) (Tool, error) {
	return NewFunctionDeclarationsTool(t.declarations...), nil
}

func (t *InlineCallableTool) Call(ctx context.Context, calls []FunctionCall) ([]Part, error) {
	var parts []Part
	for _, call := range calls {
		name := deref(call.Name)
		handler, ok := t.handlers[name]
		if !ok {
			continue
		}
		var args any
		if len(call.Args) > 0 {
			_ = json.Unmarshal(call.Args, &args)
		}
		result, err := handler(ctx, args)
		if err != nil {
			return nil, err
		}
		parts = append(parts, NewFunctionResponsePart(name, result, WithFunctionResponseID(deref(call.ID))))
	}
	return parts, nil
}

// callableToolInfo holds the resolved name -> owner-index map.
type callableToolInfo struct {
	tools        []CallableTool
	declarations []Tool
	ownerByName  map[string]int
}

// resolveCallableTools resolves tool declarations into a name -> owner
// map, rejecting duplicate declaration names across callable tools.
func resolveCallableTools(ctx context.Context, tools []CallableTool) (*callableToolInfo, error) {
	info := &callableToolInfo{tools: tools, ownerByName: map[string]int{}}
	for i, t := range tools {
		decl, err := t.Declaration(ctx)
		if err != nil {
			return nil, err
		}
		for _, fd := range decl.FunctionDeclarations {
			if _, exists := info.ownerByName[fd.Name]; exists {
				return nil, NewInvalidConfigError(fmt.Sprintf("duplicate tool declaration name: %s", fd.Name))
			}
			info.ownerByName[fd.Name] = i
		}
		info.declarations = append(info.declarations, decl)
	}
	return info, nil
}

// validateAFCTools rejects mixing plain function-declarations with
// callable tools in the same request.
func validateAFCTools(plainTools []Tool) error {
	for _, t := range plainTools {
		if len(t.FunctionDeclarations) > 0 {
			return NewInvalidConfigError("Incompatible tools found. Automatic function calling does not support mixing CallableTools with basic function declarations.")
		}
	}
	return nil
}

// validateAFCConfig enforces the incompatibility guard: AFC is
// incompatible with stream_function_call_arguments being on while AFC is
// not disabled.
func validateAFCConfig(req *GenerateRequest) error {
	if req.ToolConfig != nil && req.ToolConfig.StreamFunctionCallArguments &&
		(req.AFC == nil || !req.AFC.Disable) {
		return NewInvalidConfigError("stream_function_call_arguments is not compatible with automatic function calling. Disable AFC or disable stream_function_call_arguments.")
	}
	return nil
}

func shouldDisableAFC(req *GenerateRequest, hasCallableTools bool) bool {
	if !hasCallableTools {
		return true
	}
	if req.AFC != nil && req.AFC.Disable {
		return true
	}
	if req.AFC != nil && req.AFC.MaximumRemoteCalls != nil && *req.AFC.MaximumRemoteCalls <= 0 {
		return true
	}
	return false
}

func maxRemoteCalls(req *GenerateRequest) int {
	if req.AFC != nil && req.AFC.MaximumRemoteCalls != nil {
		return *req.AFC.MaximumRemoteCalls
	}
	return DefaultMaxRemoteCalls
}

func shouldAppendHistory(req *GenerateRequest) bool {
	return req.AFC == nil || !req.AFC.IgnoreCallHistory
}

// dispatchFunctionCalls groups calls by owner and dispatches each group
// concurrently. Grouping by owner and response composition both commute,
// so concurrent dispatch observes the same result as sequential.
func dispatchFunctionCalls(ctx context.Context, info *callableToolInfo, calls []FunctionCall) ([]Part, error) {
	grouped := map[int][]FunctionCall{}
	for _, call := range calls {
		name := deref(call.Name)
		if name == "" {
			return nil, NewInvalidConfigError("Function call name was not returned by the model.")
		}
		owner, ok := info.ownerByName[name]
		if !ok {
			return nil, NewInvalidConfigError(fmt.Sprintf("Automatic function calling was requested, but not all the tools the model used implement the CallableTool interface. Missing tool: %s.", name))
		}
		grouped[owner] = append(grouped[owner], call)
	}

	results := make([][]Part, len(grouped))
	owners := make([]int, 0, len(grouped))
	for owner := range grouped {
		owners = append(owners, owner)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, owner := range owners {
		i, owner := i, owner
		g.Go(func() error {
			parts, err := info.tools[owner].Call(gctx, grouped[owner])
			if err != nil {
				return err
			}
			results[i] = parts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Part
	emptyBatch := false
	for _, r := range results {
		if len(r) == 0 {
			emptyBatch = true
		}
		out = append(out, r...)
	}
	if emptyBatch {
		return nil, nil
	}
	return out, nil
}

// GenerateWithTools runs the automatic function calling loop over
// Generate: loop up to the remote-call budget, extract function calls,
// dispatch to owners, append call/response content, and terminate on no
// function calls or an empty dispatch batch.
func (c *Client) GenerateWithTools(ctx context.Context, req *GenerateRequest, callableTools []CallableTool, opts *HTTPOptions) (*GenerateResponse, error) {
	if err := validateAFCConfig(req); err != nil {
		return nil, err
	}
	if shouldDisableAFC(req, len(callableTools) > 0) {
		return c.Generate(ctx, req, opts)
	}
	if err := validateAFCTools(req.Tools); err != nil {
		return nil, err
	}

	info, err := resolveCallableTools(ctx, callableTools)
	if err != nil {
		return nil, err
	}

	turnReq := *req
	turnReq.Tools = append(append([]Tool{}, req.Tools...), info.declarations...)
	contents := append([]Content{}, req.Contents...)
	var history []Content
	if shouldAppendHistory(req) {
		history = append(history, contents...)
	}

	budget := maxRemoteCalls(req)
	var lastResp *GenerateResponse
	for i := 0; i <= budget; i++ {
		turnReq.Contents = contents
		resp, err := c.Generate(ctx, &turnReq, opts)
		if err != nil {
			return nil, err
		}
		lastResp = resp

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			if shouldAppendHistory(req) && len(history) > 0 {
				resp.AFCHistory = history
			}
			return resp, nil
		}

		responseParts, err := dispatchFunctionCalls(ctx, info, calls)
		if err != nil {
			return nil, err
		}
		if responseParts == nil {
			return resp, nil
		}

		callContent := NewModelContent(functionCallPartsOf(resp)...)
		responseContent := NewFunctionContent(responseParts...)
		contents = append(contents, callContent, responseContent)
		if shouldAppendHistory(req) {
			history = append(history, callContent, responseContent)
		}
	}
	return lastResp, nil
}

func functionCallPartsOf(resp *GenerateResponse) []Part {
	var out []Part
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.FunctionCall != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

// GenerateStreamWithTools runs the streaming tool-calling loop: for
// each iteration, open an SSE stream and relay every chunk to the
// consumer as it arrives, accumulating function-call parts and Contents.
// On stream end, dispatch if function calls were seen, emit the synthetic
// function-role response, and start the next iteration; otherwise
// terminate.
func (c *Client) GenerateStreamWithTools(ctx context.Context, req *GenerateRequest, callableTools []CallableTool, opts *HTTPOptions) (*stream.Stream[*GenerateResponse], error) {
	if err := validateAFCConfig(req); err != nil {
		return nil, err
	}
	if shouldDisableAFC(req, len(callableTools) > 0) {
		return c.GenerateStream(ctx, req, opts)
	}
	if err := validateAFCTools(req.Tools); err != nil {
		return nil, err
	}

	info, err := resolveCallableTools(ctx, callableTools)
	if err != nil {
		return nil, err
	}

	outC := make(chan *GenerateResponse, 4)
	errC := make(chan error, 1)

	go func() {
		defer close(outC)
		defer close(errC)

		turnReq := *req
		turnReq.Tools = append(append([]Tool{}, req.Tools...), info.declarations...)
		contents := append([]Content{}, req.Contents...)

		budget := maxRemoteCalls(req)
		for i := 0; i <= budget; i++ {
			turnReq.Contents = contents
			s, err := c.GenerateStream(ctx, &turnReq, opts)
			if err != nil {
				errC <- err
				return
			}

			var accumulatedCalls []FunctionCall
			var lastContent Content
			for s.Next() {
				resp := s.Current()
				for _, cand := range resp.Candidates {
					lastContent = cand.Content
				}
				accumulatedCalls = append(accumulatedCalls, resp.FunctionCalls()...)
				select {
				case outC <- resp:
				case <-ctx.Done():
					return
				}
			}
			if s.Err() != nil {
				errC <- s.Err()
				return
			}

			if len(accumulatedCalls) == 0 {
				return
			}

			responseParts, err := dispatchFunctionCalls(ctx, info, accumulatedCalls)
			if err != nil {
				errC <- err
				return
			}
			if responseParts == nil {
				return
			}

			callContent := NewModelContent(lastContent.Parts...)
			responseContent := NewFunctionContent(responseParts...)
			synthetic := &GenerateResponse{Candidates: []Candidate{{Content: responseContent}}}

			select {
			case outC <- synthetic:
			case <-ctx.Done():
				return
			}
			contents = append(contents, callContent, responseContent)
		}
	}()

	return stream.New[*GenerateResponse](outC, errC), nil
}
