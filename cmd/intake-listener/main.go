package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"instalabel/internal/blobstore"
	"instalabel/internal/config"
	"instalabel/internal/label"
	"instalabel/internal/listener"
	"instalabel/internal/oracle"
	"instalabel/internal/postal"
	"instalabel/internal/queue"
	"instalabel/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor, err := oracle.NewClient(ctx, cfg)
	must(err)
	profile, err := db.GetProfile(cfg.UserID)
	must(err)

	q := queue.New(queue.Deps{
		Extractor: extractor,
		History:   db,
		Postal:    postal.NewClient(cfg),
		Blobs:     blobstore.New(cfg.ReceiptsDir),
		Orders:    db,
		Labels:    label.NewRenderer(cfg.LabelsDir),
	}, queue.Options{
		UserID:      cfg.UserID,
		PreviewsDir: cfg.PreviewsDir,
		Profile:     profile,
	})
	defer q.Close()

	fmt.Printf("intake listener started user=%s provider=%s inbox=%s\n",
		cfg.UserID, cfg.IntakeMailProvider, cfg.InboxDir)

	svc := listener.NewService(db, cfg, q)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
