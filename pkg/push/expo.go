package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultExpoURL = "https://exp.host/--/api/v2/push/send"

// ExpoProvider delivers via the Expo push relay.
type ExpoProvider struct {
	URL    string
	client *http.Client
}

func NewExpoProvider(url string, timeout time.Duration) *ExpoProvider {
	if url == "" {
		url = DefaultExpoURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ExpoProvider{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type expoPushReq struct {
	To        string                 `json:"to"`
	Sound     string                 `json:"sound,omitempty"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Badge     int                    `json:"badge,omitempty"`
	Priority  string                 `json:"priority,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
}

type expoPushResp struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (p *ExpoProvider) Send(ctx context.Context, msg Message) error {
	body, _ := json.Marshal(expoPushReq{
		To:        msg.Token,
		Sound:     msg.Sound,
		Title:     msg.Title,
		Body:      msg.Body,
		Data:      msg.Data,
		Badge:     msg.Badge,
		Priority:  msg.Priority,
		ChannelID: msg.ChannelID,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-encoding", "gzip, deflate")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push: status %d", resp.StatusCode)
	}
	var out expoPushResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.Data.Status != "ok" {
		return fmt.Errorf("expo push rejected: %s", out.Data.Message)
	}
	return nil
}
