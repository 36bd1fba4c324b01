package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/TaniaLee11/opsflow-circle-sub004/internal/config"
)

type smsGateway interface {
	Push(ctx context.Context, to, body string) error
}

type restyGateway struct {
	client *resty.Client
	url    string
}

// newSMSGateway returns nil when no gateway URL is configured.
func newSMSGateway(cfg config.NotificationConfig) smsGateway {
	if cfg.SMSGatewayURL == "" {
		return nil
	}
	client := resty.New().SetTimeout(10 * time.Second)
	if cfg.SMSGatewayToken != "" {
		client.SetAuthToken(cfg.SMSGatewayToken)
	}
	return &restyGateway{client: client, url: cfg.SMSGatewayURL}
}

func (g *restyGateway) Push(ctx context.Context, to, body string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"to": to, "message": body}).
		Post(g.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway responded %s", resp.Status())
	}
	return nil
}
