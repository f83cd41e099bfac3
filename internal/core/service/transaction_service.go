package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
	"github.com/catattrans/umkm-api/internal/core/tabular"
)

// TransactionFields is the column contract of every transaction list view.
// Hidden or reordered columns are a caller-side projection; search and filter
// always run over this full set.
var TransactionFields = []tabular.Field{
	{Key: "id", Label: "ID", Sortable: true},
	{Key: "type", Label: "Jenis Transaksi", Filterable: true},
	{Key: "channel", Label: "Channel", Filterable: true},
	{Key: "amount", Label: "Nominal", Type: tabular.TypeAmount, Sortable: true},
	{Key: "transactionDate", Label: "Tanggal", Type: tabular.TypeDate, Sortable: true},
	{Key: "file", Label: "Lampiran"},
}

// TransactionService implements bookkeeping entry use cases. Listing runs the
// tabular query pipeline server-side and slices the result, so every client
// sees one consistent pagination discipline.
type TransactionService struct {
	repo        ports.TransactionRepository
	attachments ports.AttachmentStore
	log         zerolog.Logger
}

func NewTransactionService(repo ports.TransactionRepository, attachments ports.AttachmentStore, log zerolog.Logger) *TransactionService {
	return &TransactionService{repo: repo, attachments: attachments, log: log}
}

// Create validates and records one entry. The optional attachment is stored
// first; a failed upload fails the whole create rather than recording an
// entry pointing at nothing.
func (s *TransactionService) Create(ctx context.Context, input ports.CreateTransactionInput) (*domain.Transaction, error) {
	if !domain.ValidTransactionType(input.Type) || input.Channel == "" || input.Amount <= 0 {
		return nil, domain.ErrInvalidTransaction
	}
	if input.TransactionDate.IsZero() {
		input.TransactionDate = time.Now().UTC()
	}

	var attachmentRef string
	if input.Attachment != nil {
		ref, err := s.attachments.Save(ctx, attachmentName(input.AttachmentName), input.Attachment)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		attachmentRef = ref
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:              ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:            input.Type,
		Channel:         input.Channel,
		Amount:          input.Amount,
		TransactionDate: input.TransactionDate,
		Note:            input.Note,
		Attachment:      attachmentRef,
		CreatedBy:       input.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", tx.ID).
		Str("type", string(tx.Type)).
		Int64("amount", tx.Amount).
		Msg("transaction recorded")
	return tx, nil
}

func (s *TransactionService) Detail(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.repo.FindByID(ctx, id)
}

// List applies search, filters, and sort over the stored entries, then slices
// the requested page.
func (s *TransactionService) List(ctx context.Context, input ports.ListTransactionsInput) (*ports.ListTransactionsResult, error) {
	rows, err := s.queryRows(ctx, input)
	if err != nil {
		return nil, err
	}

	total := len(rows)
	page, size := input.Page, input.Size
	if page < 1 {
		page = 1
	}

	return &ports.ListTransactionsResult{
		Rows:       tabular.Page(rows, page, size),
		Fields:     TransactionFields,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: tabular.TotalPages(total, size),
	}, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("transaction_id", id).Msg("transaction soft-deleted")
	return nil
}

// ExportExcel writes the full filtered (never sliced) listing as an xlsx
// workbook and returns the download filename.
func (s *TransactionService) ExportExcel(ctx context.Context, input ports.ListTransactionsInput, w io.Writer) (string, error) {
	rows, err := s.queryRows(ctx, input)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Transaksi"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return "", fmt.Errorf("export excel: %w", err)
	}

	visible := tabular.VisibleFields(TransactionFields)
	header := make([]any, len(visible))
	for i, field := range visible {
		header[i] = field.Label
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("export excel: %w", err)
	}

	for i, row := range rows {
		rendered := tabular.RenderRow(row, visible)
		cells := make([]any, len(visible))
		for j, field := range visible {
			cells[j] = rendered[field.Key]
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return "", fmt.Errorf("export excel: row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return "", fmt.Errorf("export excel: %w", err)
	}

	name := fmt.Sprintf("transaksi-%s.xlsx", time.Now().UTC().Format("20060102"))
	return name, nil
}

func (s *TransactionService) queryRows(ctx context.Context, input ports.ListTransactionsInput) ([]tabular.Row, error) {
	txs, err := s.repo.List(ctx, ports.TransactionFilter{CreatedBy: input.CreatedBy})
	if err != nil {
		return nil, err
	}

	rows := make([]tabular.Row, len(txs))
	for i, tx := range txs {
		rows[i] = transactionRow(tx)
	}
	return tabular.Apply(rows, TransactionFields, input.Query), nil
}

func transactionRow(tx *domain.Transaction) tabular.Row {
	return tabular.Row{
		"id":              tx.ID,
		"type":            string(tx.Type),
		"channel":         tx.Channel,
		"amount":          tx.Amount,
		"transactionDate": tx.TransactionDate,
		"file":            tx.Attachment,
	}
}

// attachmentName makes stored names collision-free while keeping the original
// extension for content-type sniffing on download.
func attachmentName(original string) string {
	ext := filepath.Ext(original)
	now := time.Now().UTC()
	return fmt.Sprintf("%s%s", ulid.MustNew(ulid.Timestamp(now), rand.Reader), ext)
}
