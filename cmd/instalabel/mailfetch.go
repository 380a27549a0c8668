package main

import (
	"context"
	"errors"
	"fmt"

	"instalabel/internal"
	"instalabel/internal/config"
	"instalabel/internal/connectors"
	gmailconnector "instalabel/internal/connectors/gmail"
	imapconnector "instalabel/internal/connectors/imap"
	"instalabel/internal/queue"
	"instalabel/internal/storage"
)

// runMailFetch performs one fetch-extract cycle over the configured mailbox.
func runMailFetch(ctx context.Context, cfg config.Config, db *storage.DB) error {
	var connector connectors.MailConnector
	var err error
	switch cfg.IntakeMailProvider {
	case "gmail":
		connector, err = gmailconnector.NewConnector(cfg)
	case "imap":
		connector, err = imapconnector.NewConnector(cfg)
	default:
		err = fmt.Errorf("unsupported intake mail provider: %s", cfg.IntakeMailProvider)
	}
	if err != nil {
		return err
	}

	fetch := connectors.NewFetchService(db, cfg.RawMailDir, connector)
	orders, err := fetch.FetchOrders(cfg.IntakeMailLabel, cfg.IntakeFetchMax)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no new order mail")
		return nil
	}

	q, err := buildQueue(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer q.Close()

	for _, order := range orders {
		id := q.AddGroup(ctx, order.Docs)
		if id == "" {
			continue
		}
		if err := fetch.MarkQueued(order.Mail.ID); err != nil {
			return err
		}
		fmt.Printf("queued mail order entry=%s docs=%d from=%s\n", id, len(order.Docs), order.Mail.Sender)
	}
	q.Wait()

	printEntries(q)

	if cfg.IntakeAutoCommit {
		for _, e := range q.Entries() {
			if e.Status != internal.EntryDone {
				continue
			}
			result, err := q.Commit(ctx, e.ID)
			var validation *queue.ValidationError
			if errors.As(err, &validation) {
				fmt.Printf("entry %s held for review: %v\n", e.ID, err)
				continue
			}
			if err != nil {
				fmt.Printf("commit %s failed: %v\n", e.ID, err)
				continue
			}
			fmt.Printf("committed order id=%d label=%s\n", result.Order.ID, result.LabelPath)
		}
		q.Wait()
	}
	return nil
}
