package youtube_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/ToxicGuard/ChatGuard/pkg/infra/httpx/mocks"
	"github.com/ToxicGuard/ChatGuard/pkg/infra/youtube"
	"github.com/ToxicGuard/ChatGuard/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestClient(httpClient *mocks.MockHTTPClient) *youtube.Client {
	return youtube.NewClient(youtube.Config{
		AccessToken: "test-token",
		LiveChatID:  "chat-1",
	}, logrus.New(), httpClient)
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestGetMessages_ParsesItemsAndKeepsPageToken(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	client := newTestClient(mockClient)

	first := `{
		"nextPageToken": "page-2",
		"items": [
			{
				"id": "m1",
				"snippet": {"displayMessage": "hello", "publishedAt": "2025-01-02T03:04:05Z"},
				"authorDetails": {"channelId": "u1", "displayName": "Alice", "isChatModerator": false, "isChatOwner": false}
			},
			{
				"id": "m2",
				"snippet": {"displayMessage": "I run this place", "publishedAt": "2025-01-02T03:04:06Z"},
				"authorDetails": {"channelId": "u2", "displayName": "Owner", "isChatModerator": false, "isChatOwner": true}
			}
		]
	}`

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet &&
			req.URL.Query().Get("liveChatId") == "chat-1" &&
			req.URL.Query().Get("pageToken") == "" &&
			req.Header.Get("Authorization") == "Bearer test-token"
	})).Return(httpResponse(http.StatusOK, first), nil).Once()

	messages, err := client.GetMessages(context.Background())

	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, "u1", messages[0].Author.ID)
	assert.False(t, messages[0].Author.IsPrivileged())
	assert.True(t, messages[1].Author.IsPrivileged())

	// Next poll carries the page token forward.
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.Query().Get("pageToken") == "page-2"
	})).Return(httpResponse(http.StatusOK, `{"items": []}`), nil).Once()

	messages, err = client.GetMessages(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, messages)
	mockClient.AssertExpectations(t)
}

func TestDeleteMessage_Success(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	client := newTestClient(mockClient)

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodDelete && req.URL.Query().Get("id") == "m1"
	})).Return(httpResponse(http.StatusNoContent, ""), nil).Once()

	assert.NoError(t, client.DeleteMessage(context.Background(), "m1"))
	mockClient.AssertExpectations(t)
}

func TestDeleteMessage_PermissionDenied(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	client := newTestClient(mockClient)

	mockClient.On("Do", mock.Anything).
		Return(httpResponse(http.StatusForbidden, `{"error": {"code": 403}}`), nil).
		Once()

	err := client.DeleteMessage(context.Background(), "m1")

	assert.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
}

func TestBanUser_SendsPermanentBan(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	client := newTestClient(mockClient)

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.Method != http.MethodPost {
			return false
		}
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(body))
		return bytes.Contains(body, []byte(`"type":"permanent"`)) &&
			bytes.Contains(body, []byte(`"channelId":"u1"`)) &&
			bytes.Contains(body, []byte(`"liveChatId":"chat-1"`))
	})).Return(httpResponse(http.StatusOK, `{}`), nil).Once()

	assert.NoError(t, client.BanUser(context.Background(), "u1"))
	mockClient.AssertExpectations(t)
}

func TestBanUser_ServerErrorIsTransient(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	client := newTestClient(mockClient)

	mockClient.On("Do", mock.Anything).
		Return(httpResponse(http.StatusInternalServerError, "boom"), nil).
		Once()

	err := client.BanUser(context.Background(), "u1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrPermissionDenied)
	assert.ErrorIs(t, err, types.ErrTransient)
	assert.Contains(t, err.Error(), "500")
}

func TestDeleteMessage_BadRequestIsFatal(t *testing.T) {
	mockClient := new(mocks.MockHTTPClient)
	client := newTestClient(mockClient)

	mockClient.On("Do", mock.Anything).
		Return(httpResponse(http.StatusBadRequest, "bad id"), nil).
		Once()

	err := client.DeleteMessage(context.Background(), "m1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrPermissionDenied)
	assert.NotErrorIs(t, err, types.ErrTransient)
}
