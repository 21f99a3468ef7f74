// Package chat runs traveler conversations against an LLM, routing the
// model's tool calls through the dispatch registry and feeding payloads
// back for the final reply.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/dispatch"
)

// SystemPrompt primes the model as a flight booking assistant.
const SystemPrompt = "You are a flight booking assistant. Use the " +
	"search_flights tool to find flights and the book_flights tool to book " +
	"seats. Relay tool results to the traveler accurately, including " +
	"failure messages, and never invent flights or confirmation codes."

// Session holds one traveler's conversation history and drives the
// request, tool call, tool response, reply cycle for each turn.
//
// A Session is not safe for concurrent use; each traveler gets their own.
type Session struct {
	model    llms.Model
	registry *dispatch.Registry
	history  []llms.MessageContent
	decls    []llms.Tool
	log      logrus.FieldLogger
}

// Option configures a Session.
type Option func(*Session)

// WithSystemPrompt replaces the default system prompt. An empty prompt
// removes the system message entirely.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.history = nil
		if prompt != "" {
			s.history = []llms.MessageContent{
				llms.TextParts(llms.ChatMessageTypeSystem, prompt),
			}
		}
	}
}

// WithLogger sets the logger used for tool call activity.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates a Session over the given model and tool registry.
func NewSession(model llms.Model, registry *dispatch.Registry, opts ...Option) *Session {
	s := &Session{
		model:    model,
		registry: registry,
		history: []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt),
		},
		decls: toolDeclarations(registry),
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// toolDeclarations converts registry catalog info into the function
// declarations the model sees.
func toolDeclarations(registry *dispatch.Registry) []llms.Tool {
	infos := registry.Tools()
	decls := make([]llms.Tool, 0, len(infos))
	for _, info := range infos {
		decls = append(decls, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        info.Name,
				Description: info.Description,
				Parameters:  info.Schema,
			},
		})
	}
	return decls
}

// Turn sends one traveler message and returns the model's reply.
//
// If the model responds with tool calls, each call is dispatched, the
// payloads are appended as tool responses, and the model is asked once
// more for the traveler-facing reply. Dispatch failures (unknown tool,
// invalid arguments, store faults) abort the turn; engine outcomes such
// as a failed booking are payloads the model relays, not errors.
func (s *Session) Turn(ctx context.Context, userText string) (string, error) {
	s.history = append(s.history, llms.TextParts(llms.ChatMessageTypeHuman, userText))

	resp, err := s.model.GenerateContent(ctx, s.history, llms.WithTools(s.decls))
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	choice := resp.Choices[0]

	if len(choice.ToolCalls) == 0 {
		s.history = append(s.history, llms.TextParts(llms.ChatMessageTypeAI, choice.Content))
		return choice.Content, nil
	}

	// Record the assistant's tool call message before executing anything
	// so the history stays coherent even if a dispatch fails mid-turn.
	callMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	for _, tc := range choice.ToolCalls {
		callMsg.Parts = append(callMsg.Parts, tc)
	}
	s.history = append(s.history, callMsg)

	for _, tc := range choice.ToolCalls {
		payload, err := s.execute(ctx, tc)
		if err != nil {
			return "", err
		}
		s.history = append(s.history, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: tc.ID,
				Name:       tc.FunctionCall.Name,
				Content:    payload,
			}},
		})
	}

	final, err := s.model.GenerateContent(ctx, s.history, llms.WithTools(s.decls))
	if err != nil {
		return "", fmt.Errorf("model call after tools: %w", err)
	}
	if len(final.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices after tools")
	}
	reply := final.Choices[0].Content
	s.history = append(s.history, llms.TextParts(llms.ChatMessageTypeAI, reply))
	return reply, nil
}

// execute dispatches a single model tool call and serializes the payload
// for the tool response message.
func (s *Session) execute(ctx context.Context, tc llms.ToolCall) (string, error) {
	if tc.FunctionCall == nil {
		return "", fmt.Errorf("%w: tool call without function call", flights.ErrInvalidArguments)
	}

	var args map[string]any
	if raw := tc.FunctionCall.Arguments; raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return "", fmt.Errorf("%w: %v", flights.ErrInvalidArguments, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"tool": tc.FunctionCall.Name,
		"args": tc.FunctionCall.Arguments,
	}).Info("dispatching tool call")

	payload, err := s.registry.Dispatch(ctx, &flights.ToolCall{
		Name: tc.FunctionCall.Name,
		Args: args,
	})
	if err != nil {
		s.log.WithError(err).WithField("tool", tc.FunctionCall.Name).
			Warn("tool call failed")
		return "", err
	}

	if text, ok := payload.(string); ok {
		return text, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode tool payload: %w", err)
	}
	return string(encoded), nil
}

// History returns the conversation so far, including tool traffic.
func (s *Session) History() []llms.MessageContent {
	return s.history
}

// Reset clears the conversation, keeping the system prompt if present.
func (s *Session) Reset() {
	if len(s.history) > 0 && s.history[0].Role == llms.ChatMessageTypeSystem {
		s.history = s.history[:1]
		return
	}
	s.history = nil
}
