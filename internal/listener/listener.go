// Package listener runs fetch and process cycles against a mailbox.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pepco/internal/config"
	"pepco/internal/connectors"
	gmailconnector "pepco/internal/connectors/gmail"
	imapconnector "pepco/internal/connectors/imap"
	"pepco/internal/pipeline"
	"pepco/internal/storage"
)

type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
	connect   func(ctx context.Context, provider string) (connectors.MailConnector, error)
	logger    *slog.Logger
}

type CycleResult struct {
	Provider  string
	Fetch     connectors.FetchResult
	Processed int
	Records   int
}

func NewService(db *storage.DB, cfg config.Config, engine *pipeline.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		db:        db,
		cfg:       cfg,
		processor: pipeline.NewProcessingService(db, engine, logger),
		logger:    logger,
	}
	s.connect = s.makeConnector
	return s
}

// Run repeats cycles until ctx is cancelled. A failed cycle is logged and
// retried on the next tick.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.MailListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.logger.Error("listener.cycle.failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	res := CycleResult{Provider: provider}

	mailConnector, err := s.connect(ctx, provider)
	if err != nil {
		return res, err
	}
	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector, s.logger)
	res.Fetch, err = fetchService.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return res, err
	}

	res.Processed, res.Records, err = s.processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return res, err
	}

	s.logger.Info("listener.cycle.done",
		"provider", provider,
		"fetched", res.Fetch.Fetched,
		"stored", res.Fetch.Stored,
		"processed", res.Processed,
		"records", res.Records,
	)
	return res, nil
}

func (s *Service) makeConnector(ctx context.Context, provider string) (connectors.MailConnector, error) {
	switch provider {
	case connectors.ProviderGmail:
		return gmailconnector.NewConnector(ctx, s.cfg)
	case connectors.ProviderIMAP:
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
