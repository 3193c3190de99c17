package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"golang-bookkeeping-engine/internal/models"
	"golang-bookkeeping-engine/internal/parsers"
	"golang-bookkeeping-engine/pkg/errors"
	"golang-bookkeeping-engine/pkg/logger"
)

// Sheet names of the ledger workbook, one per document type.
const (
	SheetInvoices    = "Invoices"
	SheetPayments    = "Payments"
	SheetReceipts    = "Receipts"
	SheetCollections = "Collections"
	SheetMovements   = "Movements"
)

// Column layout per sheet, 1-based as excelize counts them. Row 1 is the
// header; data starts at row 2.
const (
	invColFileID = iota + 1
	invColNumber
	invColKind
	invColCounterpartyID
	invColCounterpartyName
	invColAmount
	invColCurrency
	invColIssueDate
	invColNotes
	invColMatchedFile
	invColConfidence
	invColSettled
)

const (
	payColFileID = iota + 1
	payColPayerID
	payColPayerName
	payColAmount
	payColDate
	payColNotes
	payColMatchedFile
	payColConfidence
)

const (
	recColFileID = iota + 1
	recColEmployeeID
	recColEmployeeName
	recColNetAmount
	recColDate
	recColNotes
	recColMatchedFile
	recColConfidence
)

const (
	colColID = iota + 1
	colColCounterpartyID
	colColCounterpartyName
	colColReference
	colColAmount
	colColExpectedDate
	colColNote
)

const (
	movColDate = iota + 1
	movColValueDate
	movColDescription
	movColCredit
	movColMatchedEntry
	movColConfidence
	movColMatchText
)

// SheetStore is the excelize-backed RowStore over one ledger workbook.
// Writes mutate the in-memory workbook; Flush persists them to disk.
type SheetStore struct {
	path string
	file *excelize.File
	log  logger.Logger
}

var _ RowStore = (*SheetStore)(nil)

// Open loads the workbook at path.
func Open(path string) (*SheetStore, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.StoreError(errors.CodeStoreRead, "open", err).WithContext("path", path)
	}
	return &SheetStore{
		path: path,
		file: f,
		log:  logger.WithComponent("sheet_store").WithField("workbook", path),
	}, nil
}

// Close releases the workbook without saving.
func (s *SheetStore) Close() error {
	return s.file.Close()
}

// Load reads every sheet into a typed snapshot. Rows that fail to parse
// are logged and skipped; a missing sheet yields an empty slice.
func (s *SheetStore) Load(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{}

	if err := s.loadSheet(ctx, SheetInvoices, func(row []string, ref models.RowRef) error {
		invoice, err := parseInvoiceRow(row, ref)
		if err != nil {
			return err
		}
		snapshot.Invoices = append(snapshot.Invoices, invoice)
		return nil
	}, &snapshot.Stats); err != nil {
		return nil, err
	}

	if err := s.loadSheet(ctx, SheetPayments, func(row []string, ref models.RowRef) error {
		payment, err := parsePaymentRow(row, ref)
		if err != nil {
			return err
		}
		snapshot.Payments = append(snapshot.Payments, payment)
		return nil
	}, &snapshot.Stats); err != nil {
		return nil, err
	}

	if err := s.loadSheet(ctx, SheetReceipts, func(row []string, ref models.RowRef) error {
		receipt, err := parseReceiptRow(row, ref)
		if err != nil {
			return err
		}
		snapshot.Receipts = append(snapshot.Receipts, receipt)
		return nil
	}, &snapshot.Stats); err != nil {
		return nil, err
	}

	if err := s.loadSheet(ctx, SheetCollections, func(row []string, ref models.RowRef) error {
		entry, err := parseCollectionRow(row)
		if err != nil {
			return err
		}
		snapshot.Entries = append(snapshot.Entries, entry)
		return nil
	}, &snapshot.Stats); err != nil {
		return nil, err
	}

	if err := s.loadSheet(ctx, SheetMovements, func(row []string, ref models.RowRef) error {
		snapshot.Movements = append(snapshot.Movements, parseMovementRow(row, ref))
		return nil
	}, &snapshot.Stats); err != nil {
		return nil, err
	}

	s.log.WithFields(logger.Fields{
		"invoices":     len(snapshot.Invoices),
		"payments":     len(snapshot.Payments),
		"receipts":     len(snapshot.Receipts),
		"collections":  len(snapshot.Entries),
		"movements":    len(snapshot.Movements),
		"rows_read":    snapshot.Stats.RowsRead,
		"rows_skipped": snapshot.Stats.RowsSkipped,
	}).Info("ledger snapshot loaded")

	return snapshot, nil
}

// loadSheet iterates a sheet's data rows, delegating each to parse. Parse
// failures count as skipped rows; only workbook-level failures abort.
func (s *SheetStore) loadSheet(ctx context.Context, sheet string, parse func(row []string, ref models.RowRef) error, stats *LoadStats) error {
	index, err := s.file.GetSheetIndex(sheet)
	if err != nil {
		return errors.StoreError(errors.CodeStoreRead, "sheet lookup", err).WithContext("sheet", sheet)
	}
	if index < 0 {
		s.log.WithField("sheet", sheet).Debug("sheet absent, skipping")
		return nil
	}

	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return errors.StoreError(errors.CodeStoreRead, "read rows", err).WithContext("sheet", sheet)
	}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if err := ctx.Err(); err != nil {
			return errors.StoreError(errors.CodeStoreRead, "read rows", err).WithContext("sheet", sheet)
		}
		if rowEmpty(row) {
			continue
		}

		ref := models.RowRef{Sheet: sheet, Row: i + 1}
		stats.RowsRead++
		if err := parse(row, ref); err != nil {
			stats.RowsSkipped++
			s.log.WithError(err).WithField("row", ref.String()).Warn("skipping unparseable row")
		}
	}
	return nil
}

// SetMatch writes the counterpart file ID and confidence to the row's
// annotation columns. The sheet determines the column layout.
func (s *SheetStore) SetMatch(ref models.RowRef, counterpartID string, confidence models.Confidence) error {
	var fileCol, confCol int
	switch ref.Sheet {
	case SheetInvoices:
		fileCol, confCol = invColMatchedFile, invColConfidence
	case SheetPayments:
		fileCol, confCol = payColMatchedFile, payColConfidence
	case SheetReceipts:
		fileCol, confCol = recColMatchedFile, recColConfidence
	default:
		return errors.Newf(errors.CategoryStore, errors.CodeStoreWrite,
			"sheet %q has no match annotation columns", ref.Sheet)
	}

	if err := s.setCell(ref.Sheet, fileCol, ref.Row, counterpartID); err != nil {
		return err
	}
	return s.setCell(ref.Sheet, confCol, ref.Row, string(confidence))
}

// SetMovementMatch writes the reconciled entry ID, confidence and
// description to a movement row.
func (s *SheetStore) SetMovementMatch(ref models.RowRef, entryID string, confidence models.Confidence, description string) error {
	if ref.Sheet != SheetMovements {
		return errors.Newf(errors.CategoryStore, errors.CodeStoreWrite,
			"movement annotation on sheet %q", ref.Sheet)
	}
	if err := s.setCell(ref.Sheet, movColMatchedEntry, ref.Row, entryID); err != nil {
		return err
	}
	if err := s.setCell(ref.Sheet, movColConfidence, ref.Row, string(confidence)); err != nil {
		return err
	}
	return s.setCell(ref.Sheet, movColMatchText, ref.Row, description)
}

// SetSettled flags an invoice-sheet row as settled.
func (s *SheetStore) SetSettled(ref models.RowRef) error {
	if ref.Sheet != SheetInvoices {
		return errors.Newf(errors.CategoryStore, errors.CodeStoreWrite,
			"settled flag on sheet %q", ref.Sheet)
	}
	return s.setCell(ref.Sheet, invColSettled, ref.Row, "TRUE")
}

// Flush saves the workbook in place.
func (s *SheetStore) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.StoreError(errors.CodeStoreWrite, "save", err)
	}
	if err := s.file.Save(); err != nil {
		return errors.StoreError(errors.CodeStoreWrite, "save", err).WithContext("path", s.path)
	}
	return nil
}

func (s *SheetStore) setCell(sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.StoreError(errors.CodeStoreWrite, "cell name", err).WithContext("sheet", sheet)
	}
	if err := s.file.SetCellValue(sheet, cell, value); err != nil {
		return errors.StoreError(errors.CodeStoreWrite, "set cell", err).
			WithContext("sheet", sheet).
			WithContext("cell", cell)
	}
	return nil
}

// cellAt returns the trimmed value of the 1-based column, tolerating short
// rows: excelize drops trailing empty cells.
func cellAt(row []string, col int) string {
	if col-1 >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseInvoiceRow(row []string, ref models.RowRef) (*models.Invoice, error) {
	amount, err := parsers.ParseAmount(cellAt(row, invColAmount))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidAmount, "invoice amount")
	}
	issued, err := parsers.ParseDate(cellAt(row, invColIssueDate))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidDate, "invoice issue date")
	}

	currency := strings.ToUpper(cellAt(row, invColCurrency))
	if currency == "" {
		currency = models.CurrencyARS
	}

	invoice := &models.Invoice{
		Ref:              ref,
		FileID:           cellAt(row, invColFileID),
		Number:           cellAt(row, invColNumber),
		Kind:             parseKind(cellAt(row, invColKind)),
		CounterpartyID:   cellAt(row, invColCounterpartyID),
		CounterpartyName: cellAt(row, invColCounterpartyName),
		Amount:           amount,
		Currency:         currency,
		IssueDate:        issued,
		Notes:            cellAt(row, invColNotes),
		Annotation: models.MatchAnnotation{
			MatchedFileID: cellAt(row, invColMatchedFile),
			Confidence:    models.Confidence(cellAt(row, invColConfidence)),
			Settled:       parseFlag(cellAt(row, invColSettled)),
		},
	}
	if err := invoice.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryStore, errors.CodeRowInvalid, "invoice row")
	}
	return invoice, nil
}

func parsePaymentRow(row []string, ref models.RowRef) (*models.Payment, error) {
	amount, err := parsers.ParseAmount(cellAt(row, payColAmount))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidAmount, "payment amount")
	}
	date, err := parsers.ParseDate(cellAt(row, payColDate))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidDate, "payment date")
	}

	payment := &models.Payment{
		Ref:       ref,
		FileID:    cellAt(row, payColFileID),
		PayerID:   cellAt(row, payColPayerID),
		PayerName: cellAt(row, payColPayerName),
		Amount:    amount,
		Date:      date,
		Notes:     cellAt(row, payColNotes),
		Annotation: models.MatchAnnotation{
			MatchedFileID: cellAt(row, payColMatchedFile),
			Confidence:    models.Confidence(cellAt(row, payColConfidence)),
		},
	}
	if err := payment.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryStore, errors.CodeRowInvalid, "payment row")
	}
	return payment, nil
}

func parseReceiptRow(row []string, ref models.RowRef) (*models.Receipt, error) {
	amount, err := parsers.ParseAmount(cellAt(row, recColNetAmount))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidAmount, "receipt net amount")
	}
	date, err := parsers.ParseDate(cellAt(row, recColDate))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidDate, "receipt date")
	}

	receipt := &models.Receipt{
		Ref:          ref,
		FileID:       cellAt(row, recColFileID),
		EmployeeID:   cellAt(row, recColEmployeeID),
		EmployeeName: cellAt(row, recColEmployeeName),
		NetAmount:    amount,
		Date:         date,
		Notes:        cellAt(row, recColNotes),
		Annotation: models.MatchAnnotation{
			MatchedFileID: cellAt(row, recColMatchedFile),
			Confidence:    models.Confidence(cellAt(row, recColConfidence)),
		},
	}
	if err := receipt.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryStore, errors.CodeRowInvalid, "receipt row")
	}
	return receipt, nil
}

func parseCollectionRow(row []string) (models.CollectionEntry, error) {
	amount, err := parsers.ParseAmount(cellAt(row, colColAmount))
	if err != nil {
		return models.CollectionEntry{}, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidAmount, "collection amount")
	}
	expected, err := parsers.ParseDate(cellAt(row, colColExpectedDate))
	if err != nil {
		return models.CollectionEntry{}, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidDate, "collection expected date")
	}

	return models.CollectionEntry{
		ID:               cellAt(row, colColID),
		CounterpartyID:   cellAt(row, colColCounterpartyID),
		CounterpartyName: cellAt(row, colColCounterpartyName),
		Reference:        cellAt(row, colColReference),
		Amount:           amount,
		ExpectedDate:     expected,
		Note:             cellAt(row, colColNote),
	}, nil
}

// parseMovementRow never fails: movement dates stay raw text and a bad
// credit amount becomes zero, which the reconciler reports as no-credit.
func parseMovementRow(row []string, ref models.RowRef) *models.BankMovement {
	credit, err := parsers.ParseAmount(cellAt(row, movColCredit))
	if err != nil {
		credit = decimal.Zero
	}
	return &models.BankMovement{
		Ref:            ref,
		DateRaw:        cellAt(row, movColDate),
		ValueDateRaw:   cellAt(row, movColValueDate),
		Description:    cellAt(row, movColDescription),
		Credit:         credit,
		MatchedEntryID: cellAt(row, movColMatchedEntry),
		Confidence:     models.Confidence(cellAt(row, movColConfidence)),
		MatchText:      cellAt(row, movColMatchText),
	}
}

func parseKind(s string) models.DocumentKind {
	switch strings.ToUpper(s) {
	case "CREDIT_NOTE", "NC", "NOTA DE CREDITO", "NOTA DE CRÉDITO":
		return models.KindCreditNote
	case "DEBIT_NOTE", "ND", "NOTA DE DEBITO", "NOTA DE DÉBITO":
		return models.KindDebitNote
	default:
		return models.KindInvoice
	}
}

func parseFlag(s string) bool {
	switch strings.ToUpper(s) {
	case "TRUE", "1", "SI", "SÍ", "YES", "X":
		return true
	default:
		return false
	}
}
