// Package google mirrors transactions into a Google Sheet through the Sheets
// v4 API, authenticating with a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"slasher/internal/core"
	applog "slasher/internal/log"
	ports "slasher/internal/sheets"
)

const defaultCacheValidDuration = 5 * time.Minute

var errNotInitialized = errors.New("sheets service not initialized")

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

// Config selects the spreadsheet and the credentials. When both credential
// fields are empty GOOGLE_APPLICATION_CREDENTIALS is used.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	// writes holds Upsert, Remove and Replace for their whole duration
	writes sync.Mutex

	// id -> 1-based row and the last row in use, refreshed from column A once it expires
	mu                 sync.Mutex
	rows               map[int64]int
	lastRow            int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// New creates a Sheets client for cfg.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      strings.TrimSpace(spreadsheetID),
		sheetName:          sheetName,
		cacheValidDuration: defaultCacheValidDuration,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Upsert overwrites the row holding tx.ID, or writes tx to the first row
// after the last one in use. Rows are never inserted, so the row of every
// other id stays where it is.
func (c *Client) Upsert(ctx context.Context, tx core.Transaction) error {
	if c.svc == nil {
		return errNotInitialized
	}
	c.writes.Lock()
	defer c.writes.Unlock()

	row, found, err := c.rowFor(ctx, tx.ID)
	if err != nil {
		return err
	}
	if !found {
		row = c.nextRow()
	}

	rng := rowRange(c.sheetName, row)
	values := &gsheet.ValueRange{Values: [][]any{transactionRow(tx)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, values).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		c.invalidateRowCache()
		return fmt.Errorf("update %s: %w", rng, err)
	}

	c.remember(tx.ID, row)
	slog.DebugContext(ctx, "Wrote sheet row",
		applog.FieldID, tx.ID,
		applog.FieldSheetsRef, rng,
		"new_row", !found)
	return nil
}

// Remove blanks the row of id. The row itself stays until the next Replace.
func (c *Client) Remove(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errNotInitialized
	}
	c.writes.Lock()
	defer c.writes.Unlock()

	row, found, err := c.rowFor(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	rng := rowRange(c.sheetName, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		c.invalidateRowCache()
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	c.mu.Lock()
	delete(c.rows, id)
	c.mu.Unlock()

	slog.DebugContext(ctx, "Cleared sheet row", applog.FieldID, id, applog.FieldSheetsRef, rng)
	return nil
}

// Replace clears the sheet and writes the header followed by txs.
func (c *Client) Replace(ctx context.Context, txs []core.Transaction) error {
	if c.svc == nil {
		return errNotInitialized
	}
	c.writes.Lock()
	defer c.writes.Unlock()

	sheet := quoteSheet(c.sheetName)
	clearRange := fmt.Sprintf("%s!A:%s", sheet, lastColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		c.invalidateRowCache()
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := make([][]any, 0, len(txs)+1)
	values = append(values, header)
	rows := make(map[int64]int, len(txs))
	for i, tx := range txs {
		values = append(values, transactionRow(tx))
		rows[tx.ID] = i + 2
	}

	rng := fmt.Sprintf("%s!A1:%s%d", sheet, lastColumn, len(values))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		c.invalidateRowCache()
		return fmt.Errorf("write %s: %w", rng, err)
	}

	c.mu.Lock()
	c.rows = rows
	c.lastRow = len(values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	slog.InfoContext(ctx, "Sheet rewritten",
		applog.FieldOperation, applog.OpSync,
		applog.FieldCount, len(txs),
		applog.FieldSheetsRef, rng)
	return nil
}

// rowFor returns the row of id, reading column A when the cache has expired.
func (c *Client) rowFor(ctx context.Context, id int64) (int, bool, error) {
	c.mu.Lock()
	valid := c.rows != nil && time.Now().Before(c.cacheExpiresAt)
	if valid {
		row, ok := c.rows[id]
		c.mu.Unlock()
		return row, ok, nil
	}
	c.mu.Unlock()

	rng := fmt.Sprintf("%s!A:A", quoteSheet(c.sheetName))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := indexIDColumn(resp.Values)

	c.mu.Lock()
	c.rows = rows
	c.lastRow = len(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	row, ok := rows[id]
	return row, ok, nil
}

// nextRow is the first row after the last one in use, never the header row.
// Call it right after rowFor.
func (c *Client) nextRow() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return max(c.lastRow+1, 2)
}

func (c *Client) remember(id int64, row int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows != nil {
		c.rows[id] = row
		c.lastRow = max(c.lastRow, row)
	}
}

// invalidateRowCache forces the next lookup to re-read column A.
func (c *Client) invalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
	c.lastRow = 0
	c.cacheExpiresAt = time.Time{}
}
