package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"teamup/internal/adapters/broker"
	"teamup/internal/adapters/email"
	"teamup/internal/repository/postgres"
	"teamup/internal/services"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Drain lifecycle facts into the ledger",
	Long:  "Run one consumer per lifecycle queue. Concluded facts also trigger feedback invitation e-mails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		logger := a.logger

		db, err := a.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		mailer := email.NewMailer(email.MailerConfig{
			Provider:    a.cfg.Email.Provider,
			FromAddress: a.cfg.Email.FromAddress,
			FromName:    a.cfg.Email.FromName,
			SES: email.SESConfig{
				Region:             a.cfg.Email.AWSRegion,
				AccessKeyID:        a.cfg.Email.AWSAccessKeyID,
				SecretAccessKey:    a.cfg.Email.AWSSecretAccessKey,
				InsecureSkipVerify: a.cfg.Email.SESInsecureSkipVerify,
			},
		}, logger)
		ledger := services.NewLedgerService(
			postgres.NewLedgerRepository(db),
			postgres.NewParticipantRepository(db),
			services.NewEmailService(mailer, email.NewTemplateRenderer(), logger),
			logger,
			a.cfg.RequestTimeout,
		)

		g, ctx := errgroup.WithContext(cmd.Context())
		for _, queue := range services.LedgerQueues {
			consumer := broker.NewConsumer(a.cfg.AMQPURL, queue, ledger, logger)
			g.Go(func() error {
				return consumer.Run(ctx)
			})
		}
		logger.Info("consumers started", "queues", services.LedgerQueues)
		return g.Wait()
	},
}
