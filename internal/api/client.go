// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the chat backend's JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/medchat-tui/internal/credentials"
	"github.com/jeranaias/medchat-tui/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultConversationsPath is where the chat app mounts its conversation API.
	DefaultConversationsPath = "/chat/api/conversations/"

	// DefaultMessagesPath is where the chat app mounts its message API.
	DefaultMessagesPath = "/chat/api/messages/"

	// DefaultRequestsPerSecond paces outgoing requests.
	DefaultRequestsPerSecond = 10

	// MaxResponseSize bounds how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024
)

// Backend is the set of calls the chat view makes. *Client implements it;
// tests may substitute their own.
type Backend interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, title string) (model.Conversation, error)
	GetMessages(ctx context.Context, id model.ID) ([]*model.Message, error)
	DeleteConversation(ctx context.Context, id model.ID) error
	SendMessage(ctx context.Context, id model.ID, content string) (*SendResult, error)
	SubmitFeedback(ctx context.Context, id model.ID, req FeedbackRequest) (model.MessagePatch, error)
	ConceptGraph(ctx context.Context, id model.ID) (string, error)
	RelatedQuestions(ctx context.Context, id model.ID) ([]string, error)
}

// Client talks to the chat backend.
type Client struct {
	baseURL           *url.URL
	conversationsPath string
	messagesPath      string
	httpClient        *http.Client
	creds             credentials.Provider
	limiter           *rate.Limiter
	userAgent         string
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for the backend at baseURL. creds supplies the
// cookie jar and CSRF token; it may not be nil.
func NewClient(baseURL string, creds credentials.Provider) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if creds == nil {
		return nil, fmt.Errorf("credentials provider is required")
	}

	return &Client{
		baseURL:           u,
		conversationsPath: DefaultConversationsPath,
		messagesPath:      DefaultMessagesPath,
		httpClient:        &http.Client{Jar: creds.Jar()},
		creds:             creds,
		limiter:           rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		userAgent:         "medchat/" + Version,
	}, nil
}

// Version is reported in the User-Agent header. Set by main at startup.
var Version = "dev"

// WithPaths overrides the conversation and message API mount points.
func (c *Client) WithPaths(conversations, messages string) *Client {
	if conversations != "" {
		c.conversationsPath = ensureSlashes(conversations)
	}
	if messages != "" {
		c.messagesPath = ensureSlashes(messages)
	}
	return c
}

// WithTimeout sets an overall per-request timeout. Zero keeps the platform
// default (no client-side timeout).
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithRateLimit sets the maximum sustained request rate. Zero or negative
// disables pacing.
func (c *Client) WithRateLimit(perSecond float64) *Client {
	if perSecond <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return c
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// WithHTTPClient replaces the underlying HTTP client. The credentials jar is
// attached to it.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc == nil {
		return c
	}
	clone := *hc
	clone.Jar = c.creds.Jar()
	c.httpClient = &clone
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// ListConversations fetches the authoritative conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var resp conversationListResponse
	if err := c.do(ctx, "list conversations", http.MethodGet, c.conversationsPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Conversations == nil {
		return nil, fmt.Errorf("list conversations: %w: missing conversations", ErrMalformed)
	}
	return *resp.Conversations, nil
}

// CreateConversation creates a conversation. An empty title lets the server
// name it after the first user message.
func (c *Client) CreateConversation(ctx context.Context, title string) (model.Conversation, error) {
	var resp conversationResponse
	err := c.do(ctx, "create conversation", http.MethodPost, c.conversationsPath, createConversationRequest{Title: title}, &resp)
	if err != nil {
		return model.Conversation{}, err
	}
	if resp.Conversation == nil || resp.Conversation.ID.IsZero() {
		return model.Conversation{}, fmt.Errorf("create conversation: %w: missing conversation", ErrMalformed)
	}
	return *resp.Conversation, nil
}

// GetMessages fetches every message of a conversation in chronological order.
func (c *Client) GetMessages(ctx context.Context, id model.ID) ([]*model.Message, error) {
	var resp messageListResponse
	if err := c.do(ctx, "load messages", http.MethodGet, c.conversationPath(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		return nil, fmt.Errorf("load messages: %w: missing messages", ErrMalformed)
	}
	return compact(*resp.Messages), nil
}

// DeleteConversation deletes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id model.ID) error {
	return c.do(ctx, "delete conversation", http.MethodDelete, c.conversationPath(id), nil, nil)
}

// SendMessage posts a user message and returns the messages the server
// stored in response.
func (c *Client) SendMessage(ctx context.Context, id model.ID, content string) (*SendResult, error) {
	var resp sendMessageResponse
	err := c.do(ctx, "send message", http.MethodPost, c.conversationPath(id)+"messages/", sendMessageRequest{Content: content}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		return nil, fmt.Errorf("send message: %w: missing messages", ErrMalformed)
	}
	return &SendResult{Messages: compact(*resp.Messages), Warning: resp.Error}, nil
}

// SubmitFeedback records (or clears) feedback on a message and returns the
// fields the server echoed back.
func (c *Client) SubmitFeedback(ctx context.Context, id model.ID, req FeedbackRequest) (model.MessagePatch, error) {
	var resp feedbackResponse
	if err := c.do(ctx, "submit feedback", http.MethodPatch, c.messagePath(id)+"feedback/", req, &resp); err != nil {
		return model.MessagePatch{}, err
	}
	if resp.Message == nil {
		return model.MessagePatch{}, fmt.Errorf("submit feedback: %w: missing message", ErrMalformed)
	}
	return *resp.Message, nil
}

// ConceptGraph asks the server for a concept-graph description of a message.
func (c *Client) ConceptGraph(ctx context.Context, id model.ID) (string, error) {
	var resp graphResponse
	if err := c.do(ctx, "concept graph", http.MethodPost, c.messagePath(id)+"concept-graph/", struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("concept graph: %s", resp.Error)
	}
	if resp.Graph == nil {
		return "", fmt.Errorf("concept graph: %w: missing graph", ErrMalformed)
	}
	return *resp.Graph, nil
}

// RelatedQuestions asks the server for follow-up questions to a message.
// At most MaxRelatedQuestions non-blank questions are returned.
func (c *Client) RelatedQuestions(ctx context.Context, id model.ID) ([]string, error) {
	var resp relatedResponse
	if err := c.do(ctx, "related questions", http.MethodPost, c.messagePath(id)+"related-questions/", struct{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("related questions: %s", resp.Error)
	}
	if resp.Questions == nil {
		return nil, fmt.Errorf("related questions: %w: missing questions", ErrMalformed)
	}
	var out []string
	for _, q := range *resp.Questions {
		if strings.TrimSpace(q) == "" {
			continue
		}
		out = append(out, q)
		if len(out) == MaxRelatedQuestions {
			break
		}
	}
	return out, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) conversationPath(id model.ID) string {
	return c.conversationsPath + id.String() + "/"
}

func (c *Client) messagePath(id model.ID) string {
	return c.messagesPath + id.String() + "/"
}

// do performs one request. body is JSON-encoded when non-nil; out is decoded
// from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	log.Printf("API_REQUEST | op=%q method=%s path=%s request_id=%s", op, method, target.Path, req.Header.Get("X-Request-ID"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("API_FAILED | op=%q error=%v", op, err)
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	log.Printf("API_RESPONSE | op=%q status=%d duration=%v", op, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	data, err := readResponse(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s: %w: empty body", op, ErrMalformed)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}
	return nil
}

// setHeaders applies the headers the backend expects. Django's CSRF check
// also compares the Referer against the host on HTTPS, so it is always set.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Referer", c.baseURL.String()+"/")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if isMutating(req.Method) {
		if token := c.creds.CSRFToken(req.URL); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// readResponse reads the body up to MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorMessage extracts {"error": ...} or {"detail": ...} from an error body.
func errorMessage(data []byte) string {
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		return body.Detail
	}
	return ""
}

func ensureSlashes(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// compact drops null entries from a decoded message list.
func compact(msgs []*model.Message) []*model.Message {
	out := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
