package push

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMProvider delivers via Firebase Cloud Messaging.
type FCMProvider struct {
	client *messaging.Client
}

func NewFCMProvider(serviceAccountPath string) (*FCMProvider, error) {
	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return &FCMProvider{client: client}, nil
}

func (p *FCMProvider) Send(ctx context.Context, msg Message) error {
	sound := msg.Sound
	if sound == "" {
		sound = "default"
	}
	// FCM requires string data values.
	data := make(map[string]string, len(msg.Data))
	for k, v := range msg.Data {
		switch val := v.(type) {
		case string:
			data[k] = val
		case int:
			data[k] = fmt.Sprintf("%d", val)
		case float64:
			data[k] = fmt.Sprintf("%.0f", val)
		default:
			b, _ := json.Marshal(v)
			data[k] = string(b)
		}
	}
	m := &messaging.Message{
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:  data,
		Token: msg.Token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: sound,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: sound,
				},
			},
		},
	}
	if msg.Badge > 0 {
		badge := msg.Badge
		m.APNS.Payload.Aps.Badge = &badge
	}
	_, err := p.client.Send(ctx, m)
	return err
}
