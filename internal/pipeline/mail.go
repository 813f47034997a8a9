package pipeline

import (
	"bytes"
	"path"
	"strings"

	"github.com/jhillyerd/enmime"
)

type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// MailOrder is a parsed email. The first PDF attachment is the order; any
// further PDFs are companion orders whose ids are merged into it.
type MailOrder struct {
	Subject         string
	Primary         *Attachment
	Companions      []Attachment
	AttachmentNames []string
}

func isPDF(name, contentType string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf") || strings.EqualFold(contentType, "application/pdf")
}

// ReadMailOrder parses a raw RFC 822 message and sorts its PDF attachments.
func ReadMailOrder(raw []byte) (MailOrder, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return MailOrder{}, err
	}

	order := MailOrder{Subject: env.GetHeader("Subject")}
	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, att := range parts {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = "attachment"
		}
		order.AttachmentNames = append(order.AttachmentNames, name)
		if !isPDF(name, att.ContentType) || len(att.Content) == 0 {
			continue
		}
		a := Attachment{Name: name, ContentType: att.ContentType, Content: att.Content}
		if order.Primary == nil {
			order.Primary = &a
			continue
		}
		order.Companions = append(order.Companions, a)
	}
	return order, nil
}
