package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"instalabel/internal"
	"instalabel/internal/blobstore"
	"instalabel/internal/config"
	"instalabel/internal/export"
	"instalabel/internal/intake"
	"instalabel/internal/label"
	"instalabel/internal/notify"
	"instalabel/internal/oracle"
	"instalabel/internal/postal"
	"instalabel/internal/queue"
	"instalabel/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx := context.Background()

	cmd := os.Args[1]
	switch cmd {
	case "orders:new":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		files := fs.String("files", "", "comma-separated image/pdf paths")
		group := fs.Bool("group", false, "treat all files as screenshots of one order")
		commit := fs.Bool("commit", false, "commit entries that pass validation")
		var sets stringList
		fs.Var(&sets, "set", "field=value override for the first entry, repeatable")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*files) == "" {
			must(fmt.Errorf("--files is required"))
		}

		docs, err := intake.LoadFiles(splitPaths(*files))
		must(err)
		if len(docs) == 0 {
			must(fmt.Errorf("no readable documents in --files"))
		}

		q, err := buildQueue(ctx, cfg, db)
		must(err)

		var ids []string
		if *group {
			ids = []string{q.AddGroup(ctx, docs)}
		} else {
			ids = q.Add(ctx, docs)
		}
		q.Wait()

		if len(sets) > 0 {
			q.Select(ids[0])
			for _, kv := range sets {
				field, value, ok := strings.Cut(kv, "=")
				if !ok || !q.SetField(ctx, field, value) {
					must(fmt.Errorf("bad --set %q", kv))
				}
			}
			q.Wait()
		}

		printEntries(q)

		if *commit {
			for _, e := range q.Entries() {
				result, err := q.Commit(ctx, e.ID)
				if err != nil {
					fmt.Printf("entry %s not committed: %v\n", e.ID, err)
					continue
				}
				fmt.Printf("order %d committed, label: %s\n", result.Order.ID, result.LabelPath)
			}
		}
		q.Wait()
		q.Close()
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		labelFlag := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 20, "max messages")
		commit := fs.Bool("commit", false, "commit entries that pass validation")
		_ = fs.Parse(os.Args[2:])

		cfg.IntakeMailProvider = *provider
		cfg.IntakeMailLabel = *labelFlag
		cfg.IntakeFetchMax = *max
		cfg.IntakeAutoCommit = *commit
		must(runMailFetch(ctx, cfg, db))
	case "orders:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max orders")
		_ = fs.Parse(os.Args[2:])

		orders, err := db.ListOrders(cfg.UserID, *limit)
		must(err)
		for _, order := range orders {
			fmt.Printf("#%d %s  %s  %s %s  Rs. %.0f  [%s] %s\n",
				order.ID, order.CreatedAt, order.Fields.CustomerName,
				order.Fields.City, order.Fields.Pincode, order.Fields.Amount,
				order.Fields.PaymentMode, order.Status)
		}
	case "orders:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		limit := fs.Int("limit", 1000, "max orders")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			*out = filepath.Join(cfg.OutputDir, "orders.xlsx")
		}

		orders, err := db.ListOrders(cfg.UserID, *limit)
		must(err)
		if len(orders) == 0 {
			must(fmt.Errorf("no orders to export"))
		}
		must(export.OrdersToXLSX(orders, *out))
		fmt.Printf("exported %d orders to %s\n", len(orders), *out)
	case "orders:status":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "order id")
		status := fs.String("status", "", "pending|shipped|returned")
		_ = fs.Parse(os.Args[2:])
		if *id == 0 || !validOrderStatus(*status) {
			must(fmt.Errorf("--id and --status=pending|shipped|returned are required"))
		}
		must(db.UpdateOrderStatus(*id, *status))
		fmt.Printf("order %d -> %s\n", *id, *status)
	case "orders:notify":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "order id")
		_ = fs.Parse(os.Args[2:])

		order, err := findOrder(db, cfg.UserID, *id)
		must(err)
		fmt.Println(notify.WhatsAppLink(order, cfg.PhoneCountryCode))
	case "orders:label":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "order id")
		_ = fs.Parse(os.Args[2:])

		order, err := findOrder(db, cfg.UserID, *id)
		must(err)
		profile, err := db.GetProfile(cfg.UserID)
		must(err)
		path, err := label.NewRenderer(cfg.LabelsDir).Render(order.Fields, profile)
		must(err)
		fmt.Printf("label written to %s\n", path)
	case "profile:set":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "store name printed on labels")
		address := fs.String("address", "", "store address")
		phone := fs.String("phone", "", "store phone")
		_ = fs.Parse(os.Args[2:])

		must(db.UpsertProfile(cfg.UserID, internal.StoreProfile{
			StoreName:    *name,
			StoreAddress: *address,
			StorePhone:   *phone,
		}))
		fmt.Println("profile updated")
	case "profile:show":
		profile, err := db.GetProfile(cfg.UserID)
		must(err)
		if profile == nil {
			fmt.Println("no profile set")
			return
		}
		fmt.Printf("store: %s\naddress: %s\nphone: %s\n", profile.StoreName, profile.StoreAddress, profile.StorePhone)
	default:
		usage()
		os.Exit(1)
	}
}

func buildQueue(ctx context.Context, cfg config.Config, db *storage.DB) (*queue.Queue, error) {
	extractor, err := oracle.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	profile, err := db.GetProfile(cfg.UserID)
	if err != nil {
		return nil, err
	}

	return queue.New(queue.Deps{
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
	}), nil
}

func printEntries(q *queue.Queue) {
	for _, e := range q.Entries() {
		fmt.Printf("entry %s status=%s docs=%d\n", e.ID, e.Status, len(e.DocNames))
		f := e.Fields
		fmt.Printf("  %s | %s | %s | %s %s | Rs. %.0f | %s | %s\n",
			f.CustomerName, f.Phone, f.Address, f.City, f.Pincode, f.Amount, f.Items, f.PaymentMode)
		if e.Risk != nil {
			fmt.Printf("  history: %d orders, %d returns\n", e.Risk.PastOrders, e.Risk.PastReturns)
		}
	}
}

func findOrder(db *storage.DB, userID string, id int64) (internal.OrderRecord, error) {
	if id == 0 {
		return internal.OrderRecord{}, fmt.Errorf("--id is required")
	}
	orders, err := db.ListOrders(userID, 10000)
	if err != nil {
		return internal.OrderRecord{}, err
	}
	for _, order := range orders {
		if order.ID == id {
			return order, nil
		}
	}
	return internal.OrderRecord{}, fmt.Errorf("order not found: %d", id)
}

func validOrderStatus(status string) bool {
	switch status {
	case internal.OrderPending, internal.OrderShipped, internal.OrderReturned:
		return true
	default:
		return false
	}
}

func splitPaths(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func usage() {
	fmt.Println("usage: instalabel <command>")
	fmt.Println("commands:")
	fmt.Println("  orders:new --files=a.jpg,b.jpg [--group] [--set field=value] [--commit]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=20 [--commit]")
	fmt.Println("  orders:list [--limit=20]")
	fmt.Println("  orders:export [--out=./out/orders.xlsx] [--limit=1000]")
	fmt.Println("  orders:status --id=1 --status=shipped")
	fmt.Println("  orders:notify --id=1")
	fmt.Println("  orders:label --id=1")
	fmt.Println("  profile:set --name=... --address=... --phone=...")
	fmt.Println("  profile:show")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
