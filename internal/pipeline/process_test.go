package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal"
	"pepco/internal/storage"
)

type mailFile struct {
	name        string
	contentType string
	content     []byte
}

func buildMail(t *testing.T, files ...mailFile) []byte {
	t.Helper()
	b := enmime.Builder().
		From("Buyer", "buyer@pepco.test").
		To("Supplier", "orders@supplier.test").
		Subject("Purchase order").
		Text([]byte("Please find the order attached."))
	for _, f := range files {
		b = b.AddAttachment(f.content, f.contentType, f.name)
	}
	part, err := b.Build()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, part.Encode(&buf))
	return buf.Bytes()
}

func TestReadMailOrder(t *testing.T) {
	raw := buildMail(t,
		mailFile{"notes.txt", "text/plain", []byte("hello")},
		mailFile{"order.pdf", "application/pdf", []byte("%PDF-1.4 primary")},
		mailFile{"extra.PDF", "application/octet-stream", []byte("%PDF-1.4 companion")},
	)
	order, err := ReadMailOrder(raw)
	require.NoError(t, err)
	assert.Equal(t, "Purchase order", order.Subject)
	require.NotNil(t, order.Primary)
	assert.Equal(t, "order.pdf", order.Primary.Name)
	require.Len(t, order.Companions, 1)
	assert.Equal(t, "extra.PDF", order.Companions[0].Name)
	assert.ElementsMatch(t, []string{"notes.txt", "order.pdf", "extra.PDF"}, order.AttachmentNames)
}

func storeMail(t *testing.T, db *storage.DB, messageID string, raw []byte) internal.EmailRow {
	t.Helper()
	path := filepath.Join(t.TempDir(), messageID+".eml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	email, err := db.UpsertEmail("imap", messageID, "Purchase order", "buyer@pepco.test", "2026-03-01T10:00:00Z", messageID, path, internal.StatusFetched)
	require.NoError(t, err)
	return email
}

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProcessEmailWithoutPDFIsSkipped(t *testing.T) {
	db := testDB(t)
	email := storeMail(t, db, "m1", buildMail(t))

	res, err := NewProcessingService(db, testEngine(), discardLogger()).ProcessEmail(email)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusSkipped, res.Status)
	assert.Zero(t, res.DocumentID)

	stored, err := db.GetEmailByID(email.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusSkipped, stored.Status)
	runs, err := db.CountRuns()
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestProcessEmailUnreadablePDFFails(t *testing.T) {
	db := testDB(t)
	email := storeMail(t, db, "m2", buildMail(t, mailFile{"order.pdf", "application/pdf", []byte("not a pdf")}))

	svc := NewProcessingService(db, testEngine(), discardLogger())
	res, err := svc.ProcessByProviderMessageID("imap", "m2")
	require.NoError(t, err)
	assert.Equal(t, internal.StatusFailed, res.Status)
	assert.NotEmpty(t, res.Error)

	doc, err := db.GetDocument(res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, internal.StatusFailed, doc.Status)
	assert.Equal(t, email.ID, *doc.EmailID)
	assert.Equal(t, "order.pdf", doc.Source)

	items, err := db.GetLineItems(res.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProcessPending(t *testing.T) {
	db := testDB(t)
	storeMail(t, db, "a", buildMail(t))
	storeMail(t, db, "b", buildMail(t, mailFile{"order.pdf", "application/pdf", []byte("broken")}))

	emails, records, err := NewProcessingService(db, testEngine(), discardLogger()).ProcessPending(10, "")
	require.NoError(t, err)
	assert.Equal(t, 2, emails)
	assert.Zero(t, records)

	pending, err := db.ListEmailsByStatus(internal.StatusFetched, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	emails, _, err = NewProcessingService(db, testEngine(), discardLogger()).ProcessPending(10, "gmail")
	require.NoError(t, err)
	assert.Zero(t, emails)
}
