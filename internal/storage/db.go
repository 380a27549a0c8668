package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"instalabel/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  userId TEXT NOT NULL,
  screenshotRefs TEXT NOT NULL,
  customerName TEXT NOT NULL,
  phone TEXT,
  address TEXT NOT NULL,
  city TEXT,
  pincode TEXT,
  amount REAL NOT NULL DEFAULT 0,
  items TEXT,
  paymentMode TEXT NOT NULL DEFAULT 'COD',
  status TEXT NOT NULL DEFAULT 'pending',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_phone ON orders(phone);
CREATE INDEX IF NOT EXISTS idx_orders_userId ON orders(userId);

CREATE TABLE IF NOT EXISTS profiles (
  userId TEXT PRIMARY KEY,
  storeName TEXT,
  storeAddress TEXT,
  storePhone TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS intake_mail (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertOrder(order internal.OrderRecord) (int64, error) {
	refsJSON, _ := json.Marshal(order.ScreenshotRefs)
	result, err := d.conn.Exec(`
INSERT INTO orders (userId, screenshotRefs, customerName, phone, address, city, pincode, amount, items, paymentMode, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, order.UserID, string(refsJSON), order.Fields.CustomerName, order.Fields.Phone, order.Fields.Address,
		order.Fields.City, order.Fields.Pincode, order.Fields.Amount, order.Fields.Items,
		string(order.Fields.PaymentMode), order.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// PhoneHistory returns the fulfillment statuses of all orders placed with an
// exactly matching phone number, newest first.
func (d *DB) PhoneHistory(phone string) ([]string, error) {
	rows, err := d.conn.Query(`SELECT status FROM orders WHERE phone = ? ORDER BY createdAt DESC`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, rows.Err()
}

func (d *DB) ListOrders(userID string, limit int) ([]internal.OrderRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, userId, screenshotRefs, customerName, phone, address, city, pincode, amount, items, paymentMode, status, createdAt
FROM orders WHERE userId = ? ORDER BY createdAt DESC LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderRecord
	for rows.Next() {
		var order internal.OrderRecord
		var refsJSON string
		var paymentMode string
		if err := rows.Scan(
			&order.ID, &order.UserID, &refsJSON, &order.Fields.CustomerName, &order.Fields.Phone,
			&order.Fields.Address, &order.Fields.City, &order.Fields.Pincode, &order.Fields.Amount,
			&order.Fields.Items, &paymentMode, &order.Status, &order.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(refsJSON), &order.ScreenshotRefs)
		order.Fields.PaymentMode = internal.PaymentMode(paymentMode)
		out = append(out, order)
	}

	return out, rows.Err()
}

func (d *DB) UpdateOrderStatus(orderID int64, status string) error {
	_, err := d.conn.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	return err
}

func (d *DB) GetProfile(userID string) (*internal.StoreProfile, error) {
	var profile internal.StoreProfile
	var name, address, phone sql.NullString
	err := d.conn.QueryRow(`SELECT storeName, storeAddress, storePhone FROM profiles WHERE userId = ?`, userID).
		Scan(&name, &address, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile.StoreName = name.String
	profile.StoreAddress = address.String
	profile.StorePhone = phone.String
	return &profile, nil
}

func (d *DB) UpsertProfile(userID string, profile internal.StoreProfile) error {
	_, err := d.conn.Exec(`
INSERT INTO profiles (userId, storeName, storeAddress, storePhone) VALUES (?, ?, ?, ?)
ON CONFLICT(userId) DO UPDATE SET
  storeName=excluded.storeName,
  storeAddress=excluded.storeAddress,
  storePhone=excluded.storePhone,
  updatedAt=CURRENT_TIMESTAMP
`, userID, profile.StoreName, profile.StoreAddress, profile.StorePhone)
	return err
}

func (d *DB) UpsertMail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.MailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO intake_mail (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.MailRow{}, err
	}

	row, err := d.GetMailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.MailRow{}, err
	}
	if row == nil {
		return internal.MailRow{}, errors.New("failed to upsert intake mail")
	}
	return *row, nil
}

func (d *DB) GetMailByProviderMessageID(provider, messageID string) (*internal.MailRow, error) {
	var row internal.MailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM intake_mail WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListMailByStatus(status string, limit int) ([]internal.MailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM intake_mail WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MailRow
	for rows.Next() {
		var row internal.MailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateMailStatus(mailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE intake_mail SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, mailID)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
