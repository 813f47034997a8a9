package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"pepco/internal"
	"pepco/internal/pdftext"
	"pepco/internal/storage"
)

// ProcessingService runs stored emails through extraction and assembly and
// persists the resulting documents.
type ProcessingService struct {
	db     *storage.DB
	engine *Engine
	logger *slog.Logger
}

func NewProcessingService(db *storage.DB, engine *Engine, logger *slog.Logger) *ProcessingService {
	if engine == nil {
		engine = NewEngine(WithLogger(logger))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessingService{db: db, engine: engine, logger: logger}
}

type ProcessResult struct {
	EmailID    int
	DocumentID int
	Status     string
	Records    int
	Warnings   []internal.Warning
	// Error is the document-level failure, if any. Storage and I/O errors
	// are returned as errors instead.
	Error string
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(email)
}

// ProcessPending processes fetched emails and returns how many emails and
// records were handled.
func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus(internal.StatusFetched, limit)
	if err != nil {
		return 0, 0, err
	}
	emails, records := 0, 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(email)
		if err != nil {
			return emails, records, fmt.Errorf("process email %d: %w", email.ID, err)
		}
		emails++
		records += res.Records
	}
	return emails, records, nil
}

func (s *ProcessingService) ProcessEmail(email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	trace := uuid.NewString()
	log := s.logger.With("trace", trace, "email", email.ID)
	res := ProcessResult{EmailID: email.ID}

	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return res, err
	}
	order, err := ReadMailOrder(raw)
	if err != nil {
		return res, fmt.Errorf("parse email: %w", err)
	}

	if order.Primary == nil {
		res.Status = internal.StatusSkipped
		log.Info("process.skipped", "attachments", len(order.AttachmentNames))
		if err := s.db.UpdateEmailStatus(email.ID, res.Status); err != nil {
			return res, err
		}
		s.recordRun(trace, &email.ID, nil, start, map[string]int{"attachments": len(order.AttachmentNames)})
		return res, nil
	}

	extra := s.companionOrderIDs(log, order.Companions)
	pages, readErr := pdftext.ReadPages(order.Primary.Content)
	doc := internal.Document{Source: order.Primary.Name, Layout: LayoutUnknown}
	var records []internal.LineItemRecord
	if readErr == nil {
		doc, records, err = s.engine.Run(order.Primary.Name, pages, AssembleOptions{ExtraOrderIDs: extra})
	} else {
		err = readErr
	}
	res.Warnings = doc.Warnings

	hash := sha256.Sum256(order.Primary.Content)
	status := internal.StatusProcessed
	errText := ""
	if err != nil {
		status, errText = internal.StatusFailed, err.Error()
		if errors.Is(err, ErrNoIdentifiers) {
			log.Warn("process.no_identifiers", "source", doc.Source)
		} else {
			log.Error("process.read_failed", "source", doc.Source, "err", err)
		}
	}

	docID, err := s.db.SaveDocument(&email.ID, hex.EncodeToString(hash[:]), status, errText, doc)
	if err != nil {
		return res, err
	}
	if err := s.db.ReplaceLineItems(docID, records); err != nil {
		return res, err
	}
	if err := s.db.UpdateEmailStatus(email.ID, status); err != nil {
		return res, err
	}
	res.DocumentID, res.Status, res.Records, res.Error = docID, status, len(records), errText

	s.recordRun(trace, &email.ID, &docID, start, map[string]int{
		"pages":      doc.Pages,
		"pairs":      len(doc.Pairs),
		"records":    len(records),
		"warnings":   len(doc.Warnings),
		"companions": len(order.Companions),
	})
	log.Info("process.done", "document", docID, "status", status, "records", len(records))
	return res, nil
}

func (s *ProcessingService) companionOrderIDs(log *slog.Logger, companions []Attachment) string {
	ids := make([]string, 0, len(companions))
	for _, c := range companions {
		first, err := pdftext.ReadFirstPage(c.Content)
		if err != nil {
			log.Warn("process.companion.unreadable", "name", c.Name, "err", err)
			continue
		}
		if id, ok := ExtractOrderID(internal.PageText{first}); ok {
			ids = append(ids, id)
		}
	}
	return joinOrderIDs(ids)
}

func (s *ProcessingService) recordRun(trace string, emailID, documentID *int, start time.Time, counts map[string]int) {
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := s.db.InsertRun(trace, emailID, documentID, timings, counts); err != nil {
		s.logger.Warn("process.run.record_failed", "trace", trace, "err", err)
	}
}
