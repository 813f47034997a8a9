package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"pepco/internal"
	"pepco/internal/config"
)

// pdfQuery narrows the listing to messages that can carry an order.
const pdfQuery = "has:attachment filename:pdf"

type Connector struct {
	service *gmail.Service
	now     func() time.Time
}

// NewConnector authenticates with the configured refresh token. Extra
// client options are appended last, so they win.
func NewConnector(ctx context.Context, cfg config.Config, extra ...option.ClientOption) (*Connector, error) {
	opts := extra
	if len(extra) == 0 {
		for _, req := range [][2]string{
			{"GMAIL_CLIENT_ID", cfg.GmailClientID},
			{"GMAIL_CLIENT_SECRET", cfg.GmailClientSecret},
			{"GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken},
		} {
			if err := cfg.Require(req[0], req[1]); err != nil {
				return nil, err
			}
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.GmailRedirectURI,
			Scopes:       []string{gmail.GmailReadonlyScope},
		}
		tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
		opts = []option.ClientOption{option.WithTokenSource(tokenSource)}
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Connector{service: svc, now: time.Now}, nil
}

func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	listResp, err := c.service.Users.Messages.List("me").
		LabelIds(label).
		Q(pdfQuery).
		MaxResults(int64(max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list gmail messages: %w", err)
	}

	out := make([]internal.FetchedMailMessage, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		if ref.Id == "" {
			continue
		}
		msg, err := c.service.Users.Messages.Get("me", ref.Id).Format("raw").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get gmail message %s: %w", ref.Id, err)
		}
		if msg.Raw == "" {
			continue
		}
		raw, err := decodeBase64URL(msg.Raw)
		if err != nil {
			return nil, err
		}
		out = append(out, c.toFetched(ref.Id, msg.InternalDate, raw))
	}
	return out, nil
}

// toFetched reads the envelope headers from the raw message itself, so a
// single API call per message is enough.
func (c *Connector) toFetched(gmailID string, internalDateMs int64, raw []byte) internal.FetchedMailMessage {
	fm := internal.FetchedMailMessage{
		Provider:  "gmail",
		MessageID: gmailID,
		Raw:       raw,
	}
	received := c.now().UTC()
	if internalDateMs > 0 {
		received = time.UnixMilli(internalDateMs).UTC()
	}

	if env, err := enmime.ReadEnvelope(bytes.NewReader(raw)); err == nil {
		fm.Subject = env.GetHeader("Subject")
		fm.From = env.GetHeader("From")
		if id := strings.TrimSpace(env.GetHeader("Message-ID")); id != "" {
			fm.MessageID = id
		}
		if internalDateMs <= 0 {
			if t, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
				received = t.UTC()
			}
		}
	}
	fm.ReceivedAt = received.Format(time.RFC3339)
	return fm
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}
