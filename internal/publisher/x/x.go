// Package x publishes posts to X (Twitter) via the v2 API with OAuth 1.0a
// user-context signing.
package x

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/dghubble/oauth1"

	"github.com/faruk-isik/x-trend-bot/internal/publisher"
)

const (
	defaultTweetURL  = "https://api.twitter.com/2/tweets"
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
)

// Credentials holds the four OAuth 1.0a user-context secrets.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Client publishes to one X account.
type Client struct {
	httpClient *http.Client
	tweetURL   string
	uploadURL  string
	log        *slog.Logger
}

// New creates a Client whose requests are signed with the given
// credentials.
func New(creds Credentials, log *slog.Logger) *Client {
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return &Client{
		httpClient: config.Client(oauth1.NoContext, token),
		tweetURL:   defaultTweetURL,
		uploadURL:  defaultUploadURL,
		log:        log,
	}
}

// Name identifies the publisher in logs and diagnostics.
func (c *Client) Name() string { return "x" }

type tweetRequest struct {
	Text  string      `json:"text"`
	Media *tweetMedia `json:"media,omitempty"`
}

type tweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Publish creates a tweet. A media attachment that fails to upload is
// dropped with a warning; the text is still published.
func (c *Client) Publish(ctx context.Context, text string, media []byte) (publisher.Result, error) {
	body := tweetRequest{Text: text}
	if len(media) > 0 {
		mediaID, err := c.uploadMedia(ctx, media)
		if err != nil {
			c.log.Warn("media upload failed, publishing without media", "error", err)
		} else {
			body.Media = &tweetMedia{MediaIDs: []string{mediaID}}
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return publisher.Result{}, fmt.Errorf("marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tweetURL, bytes.NewReader(payload))
	if err != nil {
		return publisher.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return publisher.Result{}, fmt.Errorf("post tweet: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return publisher.Result{}, err
	}

	var parsed tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return publisher.Result{}, fmt.Errorf("decode response: %w", err)
	}
	return publisher.Result{ID: parsed.Data.ID}, nil
}

// uploadMedia pushes an image through the v1.1 media endpoint and returns
// its media id string.
func (c *Client) uploadMedia(ctx context.Context, media []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", "media")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(media); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var parsed struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.MediaIDString, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", publisher.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", publisher.ErrAuthFailed, resp.StatusCode)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
}
