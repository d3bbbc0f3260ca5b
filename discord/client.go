package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	caravan "github.com/nevindra/caravan"
)

// RootEndpoint is the Discord REST API base.
const RootEndpoint = "https://discord.com/api/v10"

// Endpoint templates, filled per request.
const (
	originalResponseEndpoint = "/webhooks/$APPLICATION_ID/$INTERACTION_TOKEN/messages/@original"
	channelMessagesEndpoint  = "/channels/$CHANNEL_ID/messages"
	channelMessageEndpoint   = "/channels/$CHANNEL_ID/messages/$MESSAGE_ID"
	messageThreadsEndpoint   = "/channels/$CHANNEL_ID/messages/$MESSAGE_ID/threads"
	currentAppEndpoint       = "/applications/@me"
)

// threadAutoArchiveMinutes is one week, the longest archive window Discord
// offers.
const threadAutoArchiveMinutes = 10080

// Client is a minimal Discord REST client implementing caravan.ChatSurface.
type Client struct {
	token         string
	applicationID string
	baseURL       string
	client        *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base, used by tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a REST client authenticating as the given bot.
func NewClient(token, applicationID string, opts ...ClientOption) *Client {
	c := &Client{
		token:         token,
		applicationID: applicationID,
		baseURL:       RootEndpoint,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Wire types ---

type message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

type channel struct {
	ID string `json:"id"`
}

type application struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type embedAuthor struct {
	Name    string `json:"name,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Author      *embedAuthor `json:"author,omitempty"`
}

func toWireEmbed(e caravan.Embed) embed {
	out := embed{Title: e.Title, Description: e.Description, Color: e.Color}
	if e.AuthorName != "" || e.AuthorIcon != "" {
		out.Author = &embedAuthor{Name: e.AuthorName, IconURL: e.AuthorIcon}
	}
	return out
}

// --- ChatSurface ---

// EditOriginal replaces the deferred interaction response with content,
// returning the resulting channel message.
func (c *Client) EditOriginal(ctx context.Context, interactionToken, content string) (caravan.SurfaceMessage, error) {
	path := fillEndpoint(originalResponseEndpoint, map[string]string{
		"$APPLICATION_ID":    c.applicationID,
		"$INTERACTION_TOKEN": interactionToken,
	})
	var out message
	err := c.do(ctx, http.MethodPatch, path, map[string]any{"content": content}, &out)
	if err != nil {
		return caravan.SurfaceMessage{}, err
	}
	return caravan.SurfaceMessage{ID: out.ID, ChannelID: out.ChannelID}, nil
}

// CreateThread opens a thread on a message with a one-week auto-archive.
func (c *Client) CreateThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	path := fillEndpoint(messageThreadsEndpoint, map[string]string{
		"$CHANNEL_ID": channelID,
		"$MESSAGE_ID": messageID,
	})
	var out channel
	err := c.do(ctx, http.MethodPost, path, map[string]any{
		"name":                  name,
		"auto_archive_duration": threadAutoArchiveMinutes,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

// SendMessage posts plain content to a channel or thread.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	path := fillEndpoint(channelMessagesEndpoint, map[string]string{"$CHANNEL_ID": channelID})
	var out message
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"content": content}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SendEmbed posts an embed to a channel or thread.
func (c *Client) SendEmbed(ctx context.Context, channelID string, e caravan.Embed) (string, error) {
	path := fillEndpoint(channelMessagesEndpoint, map[string]string{"$CHANNEL_ID": channelID})
	var out message
	err := c.do(ctx, http.MethodPost, path, map[string]any{"embeds": []embed{toWireEmbed(e)}}, &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

// EditEmbed replaces the embed of an existing message.
func (c *Client) EditEmbed(ctx context.Context, channelID, messageID string, e caravan.Embed) error {
	path := fillEndpoint(channelMessageEndpoint, map[string]string{
		"$CHANNEL_ID": channelID,
		"$MESSAGE_ID": messageID,
	})
	return c.do(ctx, http.MethodPatch, path, map[string]any{"embeds": []embed{toWireEmbed(e)}}, nil)
}

// EditMessage replaces the plain content of an existing message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	path := fillEndpoint(channelMessageEndpoint, map[string]string{
		"$CHANNEL_ID": channelID,
		"$MESSAGE_ID": messageID,
	})
	return c.do(ctx, http.MethodPatch, path, map[string]any{"content": content}, nil)
}

// AppInfo returns the bot's own application identity.
func (c *Client) AppInfo(ctx context.Context) (caravan.AppInfo, error) {
	var out application
	if err := c.do(ctx, http.MethodGet, currentAppEndpoint, nil, &out); err != nil {
		return caravan.AppInfo{}, err
	}
	return caravan.AppInfo{ID: out.ID, Name: out.Name, AvatarHash: out.Icon}, nil
}

// --- Plumbing ---

func fillEndpoint(template string, values map[string]string) string {
	for k, v := range values {
		template = strings.ReplaceAll(template, k, v)
	}
	return template
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &caravan.ErrHTTP{Status: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Compile-time interface check.
var _ caravan.ChatSurface = (*Client)(nil)
