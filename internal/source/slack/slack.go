// Package slack fetches channel conversations through the Slack Web API
// and flattens them into "Name: text" transcripts ready for FAQ
// extraction. One transcript per thread; standalone messages become
// single-line threads of their own.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://slack.com/api"

// System message subtypes excluded from transcripts.
var skippedSubtypes = map[string]bool{
	"channel_join":  true,
	"channel_leave": true,
	"bot_message":   true,
}

// Thread is one flattened conversation.
type Thread struct {
	ChannelID string
	ThreadID  string
	Text      string
	Timestamp time.Time
	Permalink string
}

// Client talks to the Slack Web API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	userNames  map[string]string
	logger     *log.Logger
}

func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		userNames:  map[string]string{},
		logger:     log.New(log.Writer(), "[SLACK] ", log.LstdFlags),
	}
}

type message struct {
	Ts         string `json:"ts"`
	ThreadTs   string `json:"thread_ts"`
	User       string `json:"user"`
	Text       string `json:"text"`
	Subtype    string `json:"subtype"`
	ReplyCount int    `json:"reply_count"`
}

type apiResponse struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error"`
	Messages []message `json:"messages"`
	User     struct {
		Name     string `json:"name"`
		RealName string `json:"real_name"`
		Profile  struct {
			DisplayName string `json:"display_name"`
		} `json:"profile"`
	} `json:"user"`
	Permalink string `json:"permalink"`
}

// ChannelThreads fetches conversations from the channel going back
// daysBack days. The bot joins the channel first so history access
// works on public channels it was not yet invited to.
func (c *Client) ChannelThreads(ctx context.Context, channelID string, daysBack int) ([]Thread, error) {
	if err := c.joinChannel(ctx, channelID); err != nil {
		c.logger.Printf("could not join channel %s: %v", channelID, err)
	}

	oldest := time.Now().AddDate(0, 0, -daysBack)
	history, err := c.call(ctx, "conversations.history", url.Values{
		"channel": {channelID},
		"oldest":  {strconv.FormatFloat(float64(oldest.Unix()), 'f', 6, 64)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel history: %w", err)
	}

	var threads []Thread
	processed := map[string]bool{}
	for _, msg := range history.Messages {
		if skippedSubtypes[msg.Subtype] {
			continue
		}

		if msg.ThreadTs != "" {
			if processed[msg.ThreadTs] {
				continue
			}
			processed[msg.ThreadTs] = true

			replies, err := c.threadReplies(ctx, channelID, msg.ThreadTs)
			if err != nil {
				c.logger.Printf("failed to fetch replies for thread %s: %v", msg.ThreadTs, err)
				continue
			}
			text := c.formatTranscript(ctx, replies)
			if strings.TrimSpace(text) == "" {
				continue
			}
			threads = append(threads, Thread{
				ChannelID: channelID,
				ThreadID:  msg.ThreadTs,
				Text:      text,
				Timestamp: tsTime(msg.Ts),
				Permalink: c.permalink(ctx, channelID, msg.ThreadTs),
			})
			continue
		}

		if msg.User == "" {
			continue
		}
		threads = append(threads, Thread{
			ChannelID: channelID,
			ThreadID:  msg.Ts,
			Text:      fmt.Sprintf("%s: %s", c.userName(ctx, msg.User), msg.Text),
			Timestamp: tsTime(msg.Ts),
			Permalink: c.permalink(ctx, channelID, msg.Ts),
		})
	}

	c.logger.Printf("collected %d threads from channel %s", len(threads), channelID)
	return threads, nil
}

func (c *Client) threadReplies(ctx context.Context, channelID, threadTs string) ([]message, error) {
	res, err := c.call(ctx, "conversations.replies", url.Values{
		"channel": {channelID},
		"ts":      {threadTs},
	})
	if err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) formatTranscript(ctx context.Context, messages []message) string {
	var lines []string
	for _, msg := range messages {
		if skippedSubtypes[msg.Subtype] {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.userName(ctx, msg.User), msg.Text))
	}
	return strings.Join(lines, "\n")
}

// userName resolves a user id to a display name, preferring real_name
// over display_name over the login name. Results are cached for the
// lifetime of the client.
func (c *Client) userName(ctx context.Context, userID string) string {
	if userID == "" {
		return "Unknown User"
	}
	if name, ok := c.userNames[userID]; ok {
		return name
	}

	res, err := c.call(ctx, "users.info", url.Values{"user": {userID}})
	if err != nil {
		c.logger.Printf("failed to resolve user %s: %v", userID, err)
		return userID
	}
	name := res.User.RealName
	if name == "" {
		name = res.User.Profile.DisplayName
	}
	if name == "" {
		name = res.User.Name
	}
	if name == "" {
		name = userID
	}
	c.userNames[userID] = name
	return name
}

func (c *Client) permalink(ctx context.Context, channelID, messageTs string) string {
	res, err := c.call(ctx, "chat.getPermalink", url.Values{
		"channel":    {channelID},
		"message_ts": {messageTs},
	})
	if err != nil {
		return ""
	}
	return res.Permalink
}

func (c *Client) joinChannel(ctx context.Context, channelID string) error {
	_, err := c.call(ctx, "conversations.join", url.Values{"channel": {channelID}})
	return err
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("%s returned error: %s", method, parsed.Error)
	}
	return &parsed, nil
}

func tsTime(ts string) time.Time {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(seconds), 0).UTC()
}
