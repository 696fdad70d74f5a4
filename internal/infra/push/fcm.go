// Package push implements the notification gateway over the FCM HTTP v1
// API: topic broadcasts and single-token sends with service-account
// authentication, rate limiting, and circuit breaker protection.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"temple-notify/internal/resilience/circuitbreaker"
	"temple-notify/internal/usecase/dispatch"
)

// FCMConfig contains configuration for the FCM HTTP v1 client.
type FCMConfig struct {
	// ProjectID is the Firebase project the messages are sent under
	ProjectID string

	// Endpoint overrides the FCM API base URL. Empty means production.
	Endpoint string

	// Timeout is the HTTP request timeout for FCM API calls
	Timeout time.Duration
}

const fcmEndpoint = "https://fcm.googleapis.com"

// FCMClient sends push messages through the FCM HTTP v1 messages:send
// endpoint. It implements the dispatch.Gateway interface.
//
// Every gateway error is terminal for the item that triggered it: there
// is no in-client retry. A failed item is recorded in the ledger as
// failed and the next scheduled run for a later slot gets a fresh key.
type FCMClient struct {
	config      FCMConfig
	tokens      TokenSource
	httpClient  *http.Client
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
}

// NewFCMClient creates an FCM client authenticated by the given token
// source.
//
// The client is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 10 requests/second with burst of 20
//   - Circuit breaker with the push gateway profile
func NewFCMClient(config FCMConfig, tokens TokenSource) *FCMClient {
	if config.Endpoint == "" {
		config.Endpoint = fcmEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &FCMClient{
		config:      config,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(10, 20),
		breaker:     circuitbreaker.New(circuitbreaker.PushGatewayConfig()),
	}
}

// fcmMessage is the JSON body of one messages:send call. Exactly one of
// Topic and Token is set.
type fcmMessage struct {
	Topic        string            `json:"topic,omitempty"`
	Token        string            `json:"token,omitempty"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      fcmAndroid        `json:"android"`
	APNS         fcmAPNS           `json:"apns"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority     string `json:"priority"`
	Notification struct {
		ChannelID string `json:"channel_id"`
		Sound     string `json:"sound"`
	} `json:"notification"`
}

type fcmAPNS struct {
	Payload struct {
		APS struct {
			Sound string `json:"sound"`
		} `json:"aps"`
	} `json:"payload"`
}

// fcmErrorResponse is the error body returned by the HTTP v1 API. The
// FCM-specific errorCode lives in the details list.
type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

// SendToTopic broadcasts a message to every device subscribed to the
// topic. Implements dispatch.Gateway.
func (c *FCMClient) SendToTopic(ctx context.Context, topic string, msg dispatch.Message) (string, error) {
	return c.send(ctx, fcmMessage{Topic: topic}, msg)
}

// SendToToken delivers a message to one device. Implements
// dispatch.Gateway.
func (c *FCMClient) SendToToken(ctx context.Context, token string, msg dispatch.Message) (string, error) {
	return c.send(ctx, fcmMessage{Token: token}, msg)
}

func (c *FCMClient) send(ctx context.Context, target fcmMessage, msg dispatch.Message) (string, error) {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		return "", &dispatch.SendError{Code: dispatch.SendErrInternal, Message: fmt.Sprintf("rate limiter: %v", err)}
	}

	target.Notification = fcmNotification{Title: msg.Title, Body: msg.Body}
	target.Data = msg.Data
	target.Android.Priority = "high"
	target.Android.Notification.ChannelID = "default"
	target.Android.Notification.Sound = "default"
	target.APNS.Payload.APS.Sound = "default"

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, target)
	})
	if err != nil {
		var se *dispatch.SendError
		if errors.As(err, &se) {
			return "", se
		}
		// Breaker-open and transport errors have no HTTP classification.
		return "", &dispatch.SendError{Code: dispatch.SendErrUnavailable, Message: err.Error()}
	}
	return result.(string), nil
}

// post performs one messages:send call and returns the provider message
// name on success.
func (c *FCMClient) post(ctx context.Context, message fcmMessage) (string, error) {
	body, err := json.Marshal(struct {
		Message fcmMessage `json:"message"`
	}{Message: message})
	if err != nil {
		return "", &dispatch.SendError{Code: dispatch.SendErrInternal, Message: fmt.Sprintf("marshal message: %v", err)}
	}

	sendURL := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.config.Endpoint, c.config.ProjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(body))
	if err != nil {
		return "", &dispatch.SendError{Code: dispatch.SendErrInternal, Message: fmt.Sprintf("create request: %v", err)}
	}

	bearer, err := c.tokens.Token(ctx)
	if err != nil {
		return "", &dispatch.SendError{Code: dispatch.SendErrInternal, Message: fmt.Sprintf("access token: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &dispatch.SendError{Code: dispatch.SendErrUnavailable, Message: fmt.Sprintf("execute request: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var parsed struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return "", &dispatch.SendError{Code: dispatch.SendErrInternal, Message: fmt.Sprintf("decode response: %v", err)}
		}
		return parsed.Name, nil
	}

	return "", classifyError(resp.StatusCode, respBody)
}

// classifyError maps an FCM HTTP v1 error response to a stable
// dispatch.SendError code. The errorCode in the details list is
// authoritative; the HTTP status is the fallback.
func classifyError(status int, body []byte) *dispatch.SendError {
	var parsed fcmErrorResponse
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Error.Message
	if message == "" {
		message = string(body)
	}

	for _, detail := range parsed.Error.Details {
		switch detail.ErrorCode {
		case "UNREGISTERED":
			return &dispatch.SendError{Code: dispatch.SendErrUnregistered, Message: message, HTTPStatus: status}
		case "INVALID_ARGUMENT":
			return &dispatch.SendError{Code: dispatch.SendErrInvalidToken, Message: message, HTTPStatus: status}
		case "QUOTA_EXCEEDED":
			return &dispatch.SendError{Code: dispatch.SendErrRateLimited, Message: message, HTTPStatus: status}
		case "UNAVAILABLE", "INTERNAL":
			return &dispatch.SendError{Code: dispatch.SendErrUnavailable, Message: message, HTTPStatus: status}
		}
	}

	switch {
	case status == http.StatusNotFound:
		return &dispatch.SendError{Code: dispatch.SendErrUnregistered, Message: message, HTTPStatus: status}
	case status == http.StatusBadRequest:
		return &dispatch.SendError{Code: dispatch.SendErrInvalidToken, Message: message, HTTPStatus: status}
	case status == http.StatusTooManyRequests:
		return &dispatch.SendError{Code: dispatch.SendErrRateLimited, Message: message, HTTPStatus: status}
	case status >= 500:
		return &dispatch.SendError{Code: dispatch.SendErrUnavailable, Message: message, HTTPStatus: status}
	default:
		return &dispatch.SendError{Code: dispatch.SendErrInternal, Message: message, HTTPStatus: status}
	}
}
