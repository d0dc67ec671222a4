package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dishmatch"
	"dishmatch/recommend"
)

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	httpClient dishmatch.HTTPClient
}

func NewClient(webhookURL string, httpClient dishmatch.HTTPClient) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostResult posts a formatted recommendation result for a prompt.
func PostResult(ctx context.Context, sc dishmatch.SlackClient, channel, prompt string, res recommend.Result) error {
	return sc.PostMessage(ctx, channel, FormatResult(prompt, res))
}

// FormatResult renders a result as Slack mrkdwn.
func FormatResult(prompt string, res recommend.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Recommendations for:* _%s_\n", prompt)
	b.WriteString(res.Message)
	b.WriteString("\n")
	for i, r := range res.Items {
		fmt.Fprintf(&b, "%d. *%s*", i+1, r.Title)
		if r.VendorName != "" {
			fmt.Fprintf(&b, " from %s", r.VendorName)
		}
		if r.City != "" {
			fmt.Fprintf(&b, ", %s", r.City)
		}
		switch {
		case r.Price != nil:
			fmt.Fprintf(&b, " (₹%.0f)", *r.Price)
		case r.PriceRange != "":
			fmt.Fprintf(&b, " (%s)", r.PriceRange)
		}
		fmt.Fprintf(&b, " | %s | %s match\n", r.RatingDisplay, r.MatchScore)
		if r.AIReason != "" {
			fmt.Fprintf(&b, "    %s\n", r.AIReason)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
