// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianChat/services/chatproxy/datatypes"
)

var tracer = otel.Tracer("aleutian.llm.completions")

const (
	// NoThinkPrefix is the wire directive telling the upstream model to
	// skip extended reasoning. It is an opaque convention of the upstream;
	// no further semantics are assumed. It is applied to the outbound copy
	// of the last user message only and never stored.
	NoThinkPrefix = "/no_think "

	// ModelNameFallback is returned by ModelName when the upstream lookup
	// fails for any reason.
	ModelNameFallback = "unavailable"

	// DefaultTimeout bounds the upstream completion call so a hung
	// upstream cannot strand a request indefinitely.
	DefaultTimeout = 60 * time.Second
)

// CompletionsClient talks to an OpenAI-style chat-completions endpoint:
// POST {base}/chat/completions with a {"messages": [...]} body, and
// GET {base}/model returning a plain-text model name.
type CompletionsClient struct {
	httpClient *http.Client
	baseURL    string
}

// completionRequest is the sole upstream payload. The messages array is the
// only field; the upstream picks its own model.
type completionRequest struct {
	Messages []datatypes.Message `json:"messages"`
}

// completionPayload mirrors the parts of the upstream response this service
// inspects. Everything else rides along untouched in Reply.Raw.
type completionPayload struct {
	Choices []struct {
		Message datatypes.Message `json:"message"`
	} `json:"choices"`
}

// NewCompletionsClient creates a gateway client for the given base URL.
// A non-positive timeout falls back to DefaultTimeout.
func NewCompletionsClient(baseURL string, timeout time.Duration) (*CompletionsClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("completion service base URL not set")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	slog.Info("Initializing completions client", "base_url", baseURL, "timeout", timeout)
	return &CompletionsClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}, nil
}

// shapeOutbound returns the message list to put on the wire. Always a copy:
// the caller's stored history keeps the original, unprefixed content.
func shapeOutbound(history []datatypes.Message, noThinking bool) []datatypes.Message {
	outbound := datatypes.CopyHistory(history)
	if noThinking && len(outbound) > 0 {
		last := len(outbound) - 1
		if outbound[last].Role == datatypes.RoleUser {
			outbound[last].Content = NoThinkPrefix + outbound[last].Content
		}
	}
	return outbound
}

// Complete implements CompletionClient.
//
// # Description
//
// Issues exactly one POST to {base}/chat/completions with the shaped
// history and classifies the outcome. There is no retry on any failure
// path: a retry would risk double-charging the upstream and duplicating
// user turns, so resubmission is left to the human on the other end.
//
// # Outputs
//
//   - *Reply: on 2xx with a decodable JSON body, even when the body lacks
//     assistant content (HasContent=false).
//   - error: always a *GatewayError carrying the failure kind.
func (c *CompletionsClient) Complete(ctx context.Context, history []datatypes.Message,
	noThinking bool) (*Reply, error) {

	ctx, span := tracer.Start(ctx, "CompletionsClient.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.Int("llm.message_count", len(history)),
		attribute.Bool("llm.no_thinking", noThinking),
	)

	outbound := shapeOutbound(history, noThinking)
	reqBodyBytes, err := json.Marshal(completionRequest{Messages: outbound})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &GatewayError{Kind: KindTransport, Err: fmt.Errorf("failed to marshal completion request: %w", err)}
	}

	completionURL := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionURL, bytes.NewBuffer(reqBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &GatewayError{Kind: KindTransport, Err: fmt.Errorf("failed to build completion request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Calling completion upstream", "url", completionURL, "messages", len(outbound))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		gerr := classifyTransport(err)
		span.RecordError(gerr)
		span.SetStatus(codes.Error, gerr.Error())
		slog.Error("Completion upstream call failed", "kind", gerr.Kind, "error", err)
		return nil, gerr
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		gerr := classifyTransport(err)
		span.RecordError(gerr)
		span.SetStatus(codes.Error, gerr.Error())
		return nil, gerr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := &GatewayError{
			Kind:   KindUpstreamStatus,
			Status: resp.StatusCode,
			Body:   string(respBodyBytes),
		}
		span.RecordError(gerr)
		span.SetStatus(codes.Error, gerr.Error())
		slog.Error("Completion upstream returned an error status",
			"status", resp.StatusCode, "body", truncateForLog(respBodyBytes))
		return nil, gerr
	}

	var payload completionPayload
	if err := json.Unmarshal(respBodyBytes, &payload); err != nil {
		gerr := &GatewayError{Kind: KindMalformed, Body: string(respBodyBytes), Err: err}
		span.RecordError(gerr)
		span.SetStatus(codes.Error, gerr.Error())
		slog.Error("Completion upstream returned undecodable JSON",
			"error", err, "body", truncateForLog(respBodyBytes))
		return nil, gerr
	}

	reply := &Reply{Raw: json.RawMessage(respBodyBytes)}
	if len(payload.Choices) > 0 && payload.Choices[0].Message.Content != "" {
		reply.Content = payload.Choices[0].Message.Content
		reply.HasContent = true
	} else {
		// Contentless success: nothing for the caller to append.
		slog.Warn("Completion upstream response carried no assistant content")
	}
	return reply, nil
}

// ModelName implements CompletionClient.
//
// Failure here is deliberately swallowed: the model name is informational,
// and the chat UI must keep working when the lookup is down.
func (c *CompletionsClient) ModelName(ctx context.Context) string {
	ctx, span := tracer.Start(ctx, "CompletionsClient.ModelName")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/model", nil)
	if err != nil {
		span.RecordError(err)
		return ModelNameFallback
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Model name lookup failed", "error", err)
		span.RecordError(err)
		return ModelNameFallback
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		slog.Warn("Model name lookup returned an unusable response",
			"status", resp.StatusCode, "error", err)
		return ModelNameFallback
	}

	name := strings.TrimSpace(string(body))
	if name == "" {
		return ModelNameFallback
	}
	return name
}

// classifyTransport splits request-level failures into timeout vs transport.
func classifyTransport(err error) *GatewayError {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &GatewayError{Kind: KindTimeout, Err: err}
	}
	return &GatewayError{Kind: KindTransport, Err: err}
}

// truncateForLog bounds raw upstream bodies in log lines.
func truncateForLog(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen]) + "...(truncated)"
	}
	return string(body)
}
