package storage

import (
	"path/filepath"
	"testing"

	"instalabel/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleOrder(phone, status string) internal.OrderRecord {
	return internal.OrderRecord{
		UserID:         "user-1",
		ScreenshotRefs: []string{"user-1/1_0_a.jpg", "user-1/1_1_b.jpg"},
		Fields: internal.OrderFields{
			CustomerName: "Priya Sharma",
			Phone:        phone,
			Address:      "12 MG Road",
			City:         "Bengaluru",
			Pincode:      "560001",
			Amount:       499,
			Items:        "2x kurti",
			PaymentMode:  internal.PaymentCOD,
		},
		Status: status,
	}
}

func TestInsertAndListOrders(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertOrder(sampleOrder("9876543210", internal.OrderPending))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Fatal("insert returned zero id")
	}

	orders, err := db.ListOrders("user-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders", len(orders))
	}
	got := orders[0]
	if got.Fields.CustomerName != "Priya Sharma" || got.Fields.Amount != 499 {
		t.Fatalf("round trip lost fields: %+v", got.Fields)
	}
	if len(got.ScreenshotRefs) != 2 {
		t.Fatalf("screenshot refs = %v", got.ScreenshotRefs)
	}
	if got.Fields.PaymentMode != internal.PaymentCOD {
		t.Fatalf("payment mode = %s", got.Fields.PaymentMode)
	}

	if orders, _ := db.ListOrders("someone-else", 10); len(orders) != 0 {
		t.Fatal("orders leaked across users")
	}
}

func TestPhoneHistory(t *testing.T) {
	db := openTestDB(t)
	for _, status := range []string{internal.OrderShipped, internal.OrderReturned, internal.OrderPending} {
		if _, err := db.InsertOrder(sampleOrder("9876543210", status)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := db.InsertOrder(sampleOrder("9123456780", internal.OrderReturned)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	statuses, err := db.PhoneHistory("9876543210")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("statuses = %v, want 3 exact-match rows", statuses)
	}

	statuses, err = db.PhoneHistory("0000000000")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(statuses) != 0 {
		t.Fatalf("unknown phone returned history: %v", statuses)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertOrder(sampleOrder("9876543210", internal.OrderPending))

	if err := db.UpdateOrderStatus(id, internal.OrderShipped); err != nil {
		t.Fatalf("update: %v", err)
	}
	orders, _ := db.ListOrders("user-1", 1)
	if orders[0].Status != internal.OrderShipped {
		t.Fatalf("status = %s", orders[0].Status)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	db := openTestDB(t)

	profile, err := db.GetProfile("user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile != nil {
		t.Fatal("missing profile must be nil, not an error")
	}

	want := internal.StoreProfile{StoreName: "Meera Boutique", StoreAddress: "4 MG Road", StorePhone: "9876543210"}
	if err := db.UpsertProfile("user-1", want); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	want.StoreName = "Meera Boutique & Co"
	if err := db.UpsertProfile("user-1", want); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	profile, err = db.GetProfile("user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile == nil || *profile != want {
		t.Fatalf("profile = %+v, want %+v", profile, want)
	}
}

func TestMailDedupe(t *testing.T) {
	db := openTestDB(t)

	row, err := db.UpsertMail("gmail", "msg-1", "order", "a@b.c", "2026-01-02T10:00:00Z", "hash1", "raw/1.eml", "fetched")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	again, err := db.UpsertMail("gmail", "msg-1", "order updated", "a@b.c", "2026-01-02T10:00:00Z", "hash2", "raw/1.eml", "fetched")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != row.ID {
		t.Fatalf("dedupe broken: ids %d vs %d", row.ID, again.ID)
	}
	if again.Subject != "order updated" || again.Hash != "hash2" {
		t.Fatalf("upsert did not refresh fields: %+v", again)
	}

	if err := db.UpdateMailStatus(row.ID, "queued"); err != nil {
		t.Fatalf("status: %v", err)
	}
	queued, err := db.ListMailByStatus("queued", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(queued) != 1 || queued[0].ID != row.ID {
		t.Fatalf("queued = %+v", queued)
	}

	missing, err := db.GetMailByProviderMessageID("gmail", "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing mail: %v %v", missing, err)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	value, err := db.GetMetadata("cursor")
	if err != nil || value != nil {
		t.Fatalf("missing key: %v %v", value, err)
	}
	if err := db.SetMetadata("cursor", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.SetMetadata("cursor", "def"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, err = db.GetMetadata("cursor")
	if err != nil || value == nil || *value != "def" {
		t.Fatalf("get = %v, %v", value, err)
	}
}
