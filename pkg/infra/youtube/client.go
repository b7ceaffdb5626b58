package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/httpx"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL    = "https://www.googleapis.com/youtube/v3"
	DefaultMaxResults = 10
)

type Config struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
	LiveChatID  string `mapstructure:"live_chat_id"`
	MaxResults  int    `mapstructure:"max_results"`
}

// Client polls a YouTube live chat for new messages and applies enforcement
// actions against it. Token refresh is not handled here; the access token is
// expected to be valid for the lifetime of the process.
type Client struct {
	httpClient httpx.Client
	logger     *logrus.Logger
	config     Config

	mu            sync.Mutex
	nextPageToken string
}

func NewClient(config Config, logger *logrus.Logger, httpClient httpx.Client) *Client {
	if httpClient == nil {
		httpClient = httpx.NewClient(httpx.DefaultTimeout)
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultMaxResults
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

type liveChatMessagesResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			DisplayMessage string `json:"displayMessage"`
			PublishedAt    string `json:"publishedAt"`
		} `json:"snippet"`
		AuthorDetails struct {
			ChannelID       string `json:"channelId"`
			DisplayName     string `json:"displayName"`
			IsChatModerator bool   `json:"isChatModerator"`
			IsChatOwner     bool   `json:"isChatOwner"`
		} `json:"authorDetails"`
	} `json:"items"`
}

// GetMessages fetches the next page of live chat messages. The page token is
// kept between calls so successive polls only see new messages.
func (c *Client) GetMessages(ctx context.Context) ([]types.ChatMessage, error) {
	c.mu.Lock()
	pageToken := c.nextPageToken
	c.mu.Unlock()

	query := url.Values{}
	query.Set("liveChatId", c.config.LiveChatID)
	query.Set("part", "snippet,authorDetails")
	query.Set("maxResults", strconv.Itoa(c.config.MaxResults))
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	body, err := c.call(ctx, http.MethodGet, "/liveChat/messages?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live chat messages: %w", err)
	}

	var resp liveChatMessagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode live chat response: %w", err)
	}

	c.mu.Lock()
	c.nextPageToken = resp.NextPageToken
	c.mu.Unlock()

	messages := make([]types.ChatMessage, 0, len(resp.Items))
	for _, item := range resp.Items {
		receivedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			receivedAt = time.Now()
		}
		messages = append(messages, types.ChatMessage{
			ID:   item.ID,
			Text: item.Snippet.DisplayMessage,
			Author: types.Author{
				ID:          item.AuthorDetails.ChannelID,
				DisplayName: item.AuthorDetails.DisplayName,
				IsModerator: item.AuthorDetails.IsChatModerator,
				IsOwner:     item.AuthorDetails.IsChatOwner,
			},
			ReceivedAt: receivedAt,
		})
	}
	return messages, nil
}

// DeleteMessage removes a single chat message.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	query := url.Values{}
	query.Set("id", messageID)

	if _, err := c.call(ctx, http.MethodDelete, "/liveChat/messages?"+query.Encode(), nil); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	c.logger.WithField("message_id", messageID).Info("deleted chat message")
	return nil
}

type banRequest struct {
	Snippet banSnippet `json:"snippet"`
}

type banSnippet struct {
	LiveChatID        string            `json:"liveChatId"`
	Type              string            `json:"type"`
	BannedUserDetails bannedUserDetails `json:"bannedUserDetails"`
}

type bannedUserDetails struct {
	ChannelID string `json:"channelId"`
}

// BanUser permanently bans a user from the live chat.
func (c *Client) BanUser(ctx context.Context, userID string) error {
	payload, err := json.Marshal(banRequest{
		Snippet: banSnippet{
			LiveChatID:        c.config.LiveChatID,
			Type:              "permanent",
			BannedUserDetails: bannedUserDetails{ChannelID: userID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal ban request: %w", err)
	}

	if _, err := c.call(ctx, http.MethodPost, "/liveChat/bans?part=snippet", payload); err != nil {
		return fmt.Errorf("failed to ban user %s: %w", userID, err)
	}
	c.logger.WithField("user_id", userID).Info("banned user")
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("youtube API returned 403: %w", types.ErrPermissionDenied)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("youtube API returned %d: %s: %w", resp.StatusCode, string(body), types.ErrTransient)
	default:
		return nil, fmt.Errorf("youtube API returned %d: %s", resp.StatusCode, string(body))
	}
}
