package listener

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal"
	"pepco/internal/config"
	"pepco/internal/connectors"
	"pepco/internal/storage"
)

type staticConnector []internal.FetchedMailMessage

func (c staticConnector) FetchInbox(context.Context, string, int) ([]internal.FetchedMailMessage, error) {
	return c, nil
}

func TestRunCycle(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Config{
		RawMailDir:               filepath.Join(dir, "raw"),
		MailListenerProvider:     "IMAP",
		MailListenerLabel:        "INBOX",
		MailListenerFetchMax:     10,
		MailListenerProcessBatch: 10,
	}
	svc := NewService(db, cfg, nil, nil)
	svc.connect = func(_ context.Context, provider string) (connectors.MailConnector, error) {
		assert.Equal(t, connectors.ProviderIMAP, provider)
		return staticConnector{{
			Provider:   connectors.ProviderIMAP,
			MessageID:  "<1@x>",
			Subject:    "hello",
			ReceivedAt: "2026-03-01T10:00:00Z",
			Raw:        []byte("Subject: hello\r\nContent-Type: text/plain\r\n\r\nno order here\r\n"),
		}}, nil
	}

	res, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fetch.Stored)
	assert.Equal(t, 1, res.Processed)

	row, err := db.MustEmailByProviderMessageID(connectors.ProviderIMAP, "<1@x>")
	require.NoError(t, err)
	assert.Equal(t, internal.StatusSkipped, row.Status)
}

func TestRunCycleUnknownProvider(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	svc := NewService(db, config.Config{MailListenerProvider: "pop3"}, nil, nil)
	_, err = svc.RunCycle(context.Background())
	assert.ErrorContains(t, err, "unsupported listener provider")
}

func TestRunStopsOnCancel(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(db, config.Config{MailListenerProvider: "pop3"}, nil, nil)
	assert.NoError(t, svc.Run(ctx))
}
