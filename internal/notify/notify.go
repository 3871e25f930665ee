// Package notify publishes finished selections to humans: a text
// digest for the console and an optional JSON webhook push.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-screener/internal/models"
)

// Item is one ranked pick in a notification payload.
type Item struct {
	Rank   int     `json:"rank"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Price  float64 `json:"price"`
	Reason string  `json:"reason"`
}

// Payload is the wire shape pushed to webhook consumers.
type Payload struct {
	Date     string `json:"date"`
	Strategy string `json:"strategy"`
	Items    []Item `json:"items"`
}

// BuildPayload converts a selection into its notification payload.
// Ranks are 1-based in selection order.
func BuildPayload(selection models.SelectionResult) Payload {
	payload := Payload{
		Date:     selection.Date.Format("2006-01-02"),
		Strategy: selection.Strategy,
		Items:    make([]Item, 0, len(selection.Results)),
	}
	for i, r := range selection.Results {
		payload.Items = append(payload.Items, Item{
			Rank:   i + 1,
			Code:   r.Code,
			Name:   r.Name,
			Score:  r.Total,
			Price:  r.Price,
			Reason: r.Reason,
		})
	}
	return payload
}

// Digest renders the payload as a human-readable text summary.
func Digest(payload Payload) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Stock selection %s (%s)\n", payload.Date, payload.Strategy))
	if len(payload.Items) == 0 {
		builder.WriteString("No stocks met the criteria today.\n")
		return builder.String()
	}
	for _, item := range payload.Items {
		builder.WriteString(fmt.Sprintf("%2d. %s %s  score %.1f  price %.2f\n    %s\n",
			item.Rank, item.Code, item.Name, item.Score, item.Price, item.Reason))
	}
	return builder.String()
}

// Notifier pushes selection payloads to a webhook endpoint.
type Notifier struct {
	webhookURL string
	client     *retryablehttp.Client
	logger     *logrus.Logger
}

// NewNotifier creates a webhook notifier. An empty URL disables
// delivery; Send becomes a no-op.
func NewNotifier(webhookURL string, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.New()
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return &Notifier{
		webhookURL: webhookURL,
		client:     client,
		logger:     logger,
	}
}

// Send delivers the payload as JSON to the configured webhook.
func (n *Notifier) Send(ctx context.Context, payload Payload) error {
	if n.webhookURL == "" {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}

	n.logger.WithFields(logrus.Fields{
		"date":  payload.Date,
		"items": len(payload.Items),
	}).Info("Selection notification delivered")
	return nil
}
