package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"whatsbot-gateway/internal/config"
)

// Sender is the messaging transport the gateway depends on. The orchestrator
// and webhook auto-replies only need a way to push text at a phone number and
// to know whether the channel is connected.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
	Ready() bool
}

// Client sends messages through the Meta WhatsApp Cloud API.
type Client struct {
	Config *config.Config
	HTTP   *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{Config: cfg, HTTP: &http.Client{}}
}

type textMessage struct {
	MessagingProduct string  `json:"messaging_product"`
	To               string  `json:"to"`
	Type             string  `json:"type"`
	Text             textObj `json:"text"`
}

type textObj struct {
	Body string `json:"body"`
}

// Ready reports whether the Cloud API credentials are configured.
func (c *Client) Ready() bool {
	return c.Config.WhatsAppToken != "" && c.Config.PhoneNumberID != ""
}

// Send posts a text message to the Cloud API.
func (c *Client) Send(ctx context.Context, phone, text string) error {
	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             textObj{Body: text},
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://graph.facebook.com/v19.0/%s/messages", c.Config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}
	return nil
}
