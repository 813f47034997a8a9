package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pepco/internal/connectors"
	gmailconnector "pepco/internal/connectors/gmail"
	imapconnector "pepco/internal/connectors/imap"
	"pepco/internal/listener"
	"pepco/internal/pipeline"
	"pepco/internal/reference"
)

func newReferenceSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reference:sync",
		Short: "Fetch the price, translation and material tables and store snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			src, err := reference.NewSource(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			res, err := reference.NewSyncService(db, src, a.logger).Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reference sync done prices=%d translations=%d materials=%d\n",
				res.Counts[reference.KindPrices], res.Counts[reference.KindTranslations], res.Counts[reference.KindMaterials])
			return nil
		},
	}
}

func newMailFetchCmd(a *app) *cobra.Command {
	var provider, label string
	var max int
	cmd := &cobra.Command{
		Use:   "mail:fetch",
		Short: "Download new order emails and store them for processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			var conn connectors.MailConnector
			switch strings.ToLower(strings.TrimSpace(provider)) {
			case connectors.ProviderGmail:
				conn, err = gmailconnector.NewConnector(cmd.Context(), a.cfg)
			case connectors.ProviderIMAP:
				conn, err = imapconnector.NewConnector(a.cfg)
			default:
				err = fmt.Errorf("unsupported provider: %s", provider)
			}
			if err != nil {
				return err
			}
			res, err := connectors.NewFetchService(db, a.cfg.RawMailDir, conn, a.logger).FetchAndStore(cmd.Context(), label, max)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mail fetch done provider=%s fetched=%d stored=%d known=%d\n", provider, res.Fetched, res.Stored, res.Known)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", connectors.ProviderGmail, "gmail|imap")
	cmd.Flags().StringVar(&label, "label", "INBOX", "mailbox folder or label")
	cmd.Flags().IntVar(&max, "max", 50, "max messages")
	return cmd
}

func newMailProcessCmd(a *app) *cobra.Command {
	var provider, messageID string
	var batch int
	cmd := &cobra.Command{
		Use:   "mail:process",
		Short: "Extract the order PDFs of stored emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			processor := pipeline.NewProcessingService(db, a.engine(), a.logger)
			w := cmd.OutOrStdout()
			if strings.TrimSpace(messageID) != "" {
				res, err := processor.ProcessByProviderMessageID(provider, messageID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "processed email id=%d document=%d status=%s records=%d\n", res.EmailID, res.DocumentID, res.Status, res.Records)
				for _, warn := range res.Warnings {
					fmt.Fprintf(w, "warning %s: %s\n", warn.Code, warn.Message)
				}
				if res.Error != "" {
					fmt.Fprintf(w, "error: %s\n", res.Error)
				}
				return nil
			}
			emails, records, err := processor.ProcessPending(batch, provider)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "processed pending emails=%d records=%d\n", emails, records)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "only emails of this provider (required with --message-id)")
	cmd.Flags().StringVar(&messageID, "message-id", "", "process one message")
	cmd.Flags().IntVar(&batch, "batch", 20, "batch size")
	return cmd
}

func newMailListenCmd(a *app) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "mail:listen",
		Short: "Poll the mailbox and process new orders until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			svc := listener.NewService(db, a.cfg, a.engine(), a.logger)
			if once {
				_, err := svc.RunCycle(cmd.Context())
				return err
			}
			return svc.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	return cmd
}
