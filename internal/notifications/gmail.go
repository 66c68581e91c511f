package notifications

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends through the Gmail API as the authorized sender.
type GmailMailer struct {
	svc  *gmail.Service
	from mail.Address
	now  func() time.Time
}

// NewGmailMailer authorizes with the OAuth client and token JSON from cfg.
// Extra options are appended last.
func NewGmailMailer(ctx context.Context, cfg config.EmailConfig, opts ...option.ClientOption) (*GmailMailer, error) {
	if strings.TrimSpace(cfg.Sender) == "" {
		return nil, fmt.Errorf("email sender is required")
	}
	var base []option.ClientOption
	if cfg.CredentialsJSON != "" || cfg.TokenJSON != "" {
		client, err := oauthClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		base = append(base, option.WithHTTPClient(client))
	}
	svc, err := gmail.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &GmailMailer{
		svc:  svc,
		from: mail.Address{Name: cfg.SenderName, Address: cfg.Sender},
		now:  time.Now,
	}, nil
}

func oauthClient(ctx context.Context, cfg config.EmailConfig) (*http.Client, error) {
	if cfg.CredentialsJSON == "" || cfg.TokenJSON == "" {
		return nil, fmt.Errorf("gmail needs both OAuth client credentials and a token")
	}
	oauthCfg, err := google.ConfigFromJSON([]byte(cfg.CredentialsJSON), gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail client credentials: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(cfg.TokenJSON), &token); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}
	return oauthCfg.Client(ctx, &token), nil
}

func (g *GmailMailer) Send(ctx context.Context, msg Message) (string, error) {
	raw, err := buildMIME(g.from, msg, g.now())
	if err != nil {
		return "", fmt.Errorf("build message: %w", err)
	}
	sent, err := g.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send: %w", err)
	}
	return sent.Id, nil
}
