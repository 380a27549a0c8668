package listener

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"instalabel/internal"
	"instalabel/internal/config"
	"instalabel/internal/connectors"
	gmailconnector "instalabel/internal/connectors/gmail"
	imapconnector "instalabel/internal/connectors/imap"
	"instalabel/internal/intake"
	"instalabel/internal/queue"
	"instalabel/internal/storage"
)

// settleDelay gives file producers (scp, camera sync) time to finish
// writing before the file is read.
const settleDelay = 500 * time.Millisecond

// Service runs the unattended intake loop: it watches an inbox directory
// and optionally polls a mailbox, feeds everything into the batch queue and,
// when auto-commit is on, commits entries that extracted cleanly.
type Service struct {
	db    *storage.DB
	cfg   config.Config
	queue *queue.Queue
}

func NewService(db *storage.DB, cfg config.Config, q *queue.Queue) *Service {
	return &Service{db: db, cfg: cfg, queue: q}
}

func (s *Service) Run(ctx context.Context) error {
	if s.cfg.InboxDir != "" {
		if err := s.watchInbox(ctx); err != nil {
			return err
		}
	}

	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("intake cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			s.queue.Wait()
			return nil
		case <-time.After(time.Duration(s.cfg.IntakeIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	if provider := strings.ToLower(strings.TrimSpace(s.cfg.IntakeMailProvider)); provider != "" {
		if err := s.fetchMail(ctx, provider); err != nil {
			return err
		}
	}

	s.queue.Wait()

	if s.cfg.IntakeAutoCommit {
		s.commitReady(ctx)
	}

	entries := s.queue.Entries()
	fmt.Printf("intake cycle done queued=%d\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %s status=%s name=%q\n", e.ID, e.Status, e.Fields.CustomerName)
	}
	return nil
}

func (s *Service) fetchMail(ctx context.Context, provider string) error {
	connector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetch := connectors.NewFetchService(s.db, s.cfg.RawMailDir, connector)
	orders, err := fetch.FetchOrders(s.cfg.IntakeMailLabel, s.cfg.IntakeFetchMax)
	if err != nil {
		return err
	}

	for _, order := range orders {
		id := s.queue.AddGroup(ctx, order.Docs)
		if id == "" {
			continue
		}
		if err := fetch.MarkQueued(order.Mail.ID); err != nil {
			return err
		}
		fmt.Printf("queued mail order entry=%s docs=%d from=%s\n", id, len(order.Docs), order.Mail.Sender)
	}
	return nil
}

// commitReady commits every extracted entry that passes validation.
// Entries with missing required fields stay queued for manual correction.
func (s *Service) commitReady(ctx context.Context) {
	for _, e := range s.queue.Entries() {
		if e.Status != internal.EntryDone {
			continue
		}
		result, err := s.queue.Commit(ctx, e.ID)
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
}

func (s *Service) watchInbox(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.InboxDir, 0o755); err != nil {
		return err
	}

	// Pick up files dropped while the listener was down.
	existing, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		return err
	}
	for _, de := range existing {
		if !de.IsDir() && intake.SupportedFile(de.Name()) {
			s.ingestFile(ctx, filepath.Join(s.cfg.InboxDir, de.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.cfg.InboxDir); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if !intake.SupportedFile(event.Name) {
					continue
				}
				time.Sleep(settleDelay)
				s.ingestFile(ctx, event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Printf("inbox watch error: %v\n", err)
			}
		}
	}()

	return nil
}

func (s *Service) ingestFile(ctx context.Context, path string) {
	docs, err := intake.LoadFiles([]string{path})
	if err != nil {
		fmt.Printf("ingest %s failed: %v\n", path, err)
		return
	}

	ids := s.queue.Add(ctx, docs)
	fmt.Printf("queued %s entry=%s\n", filepath.Base(path), strings.Join(ids, ","))

	// Move the file aside so a restart does not re-ingest it.
	processedDir := filepath.Join(s.cfg.InboxDir, "processed")
	if err := os.MkdirAll(processedDir, 0o755); err == nil {
		_ = os.Rename(path, filepath.Join(processedDir, filepath.Base(path)))
	}
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported intake mail provider: %s", provider)
	}
}
