package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Discord rejects webhook content longer than this.
const discordContentLimit = 2000

// DiscordSender posts to a channel webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{webhookURL: webhookURL, client: &http.Client{Timeout: 10 * time.Second}}
}

func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	content := "**" + title + "**\n" + message
	if r := []rune(content); len(r) > discordContentLimit {
		content = string(r[:discordContentLimit])
	}
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return errors.Wrap(err, "marshal discord payload")
	}
	return post(ctx, d.client, d.webhookURL, body)
}

func (d *DiscordSender) Name() string { return "discord" }
