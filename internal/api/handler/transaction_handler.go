package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/api/metrics"
	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
	"github.com/catattrans/umkm-api/internal/core/tabular"
	"github.com/catattrans/umkm-api/internal/pkg/format"
)

// TransactionHandler exposes the bookkeeping endpoints. Cashiers only see
// their own entries; admins see everything.
type TransactionHandler struct {
	transactions ports.TransactionService
}

func NewTransactionHandler(transactions ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type listTransactionsRequest struct {
	Search  string              `json:"search"`
	Filters map[string]string   `json:"filters"`
	Sort    *tabular.SortConfig `json:"sort"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

// List runs the tabular query server-side and returns one page.
//
// @Summary      List transactions
// @Tags         transaksi
// @Accept       json
// @Produce      json
// @Param        body  body      listTransactionsRequest  true  "Query"
// @Success      200   {object}  ports.ListTransactionsResult
// @Router       /transaksi/get-all [post]
func (h *TransactionHandler) List(c echo.Context) error {
	var req listTransactionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	input, err := h.listInput(c, req)
	if err != nil {
		return err
	}

	result, err := h.transactions.List(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Detail returns one transaction.
//
// @Summary      Transaction detail
// @Tags         transaksi
// @Accept       json
// @Produce      json
// @Param        body  body      idRequest  true  "Transaction ID"
// @Success      200   {object}  domain.Transaction
// @Failure      404   {object}  map[string]string
// @Router       /transaksi/get-detail [post]
func (h *TransactionHandler) Detail(c echo.Context) error {
	var req idRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	tx, err := h.transactions.Detail(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	if s.Role == domain.RoleKasir && tx.CreatedBy != s.ID {
		return domain.ErrForbidden
	}
	return c.JSON(http.StatusOK, tx)
}

// Create records a transaction from the multipart entry form. The optional
// "file" part is stored as the receipt attachment. Amounts arrive as typed in
// the form, so "Rp 5.000" and "5000" both parse to 5000 rupiah.
//
// @Summary      Record transaction
// @Tags         transaksi
// @Accept       multipart/form-data
// @Produce      json
// @Param        type             formData  string  true   "PEMASUKAN or PENGELUARAN"
// @Param        channel          formData  string  true   "Payment channel"
// @Param        amount           formData  string  true   "Amount in rupiah"
// @Param        transactionDate  formData  string  true   "Transaction date"
// @Param        note             formData  string  false  "Free-form note"
// @Param        file             formData  file    false  "Receipt attachment"
// @Success      201   {object}  domain.Transaction
// @Failure      422   {object}  map[string]string
// @Router       /transaksi/create [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	amount, ok := format.Amount(c.FormValue("amount"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "amount is not a number")
	}
	date, ok := format.ParseDate(c.FormValue("transactionDate"))
	if !ok {
		date = time.Now()
	}

	input := ports.CreateTransactionInput{
		Type:            domain.TransactionType(c.FormValue("type")),
		Channel:         c.FormValue("channel"),
		Amount:          amount,
		TransactionDate: date,
		Note:            c.FormValue("note"),
		CreatedBy:       s.ID,
	}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable attachment")
		}
		defer f.Close()
		input.AttachmentName = fh.Filename
		input.Attachment = f
	}

	tx, err := h.transactions.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	metrics.TransactionsCreatedTotal.WithLabelValues(string(tx.Type)).Inc()
	return c.JSON(http.StatusCreated, tx)
}

// Delete soft-deletes a transaction. Cashiers may only delete their own.
//
// @Summary      Delete transaction
// @Tags         transaksi
// @Accept       json
// @Produce      json
// @Param        body  body      idRequest  true  "Transaction ID"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /transaksi/delete [post]
func (h *TransactionHandler) Delete(c echo.Context) error {
	var req idRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if s.Role == domain.RoleKasir {
		tx, err := h.transactions.Detail(c.Request().Context(), req.ID)
		if err != nil {
			return err
		}
		if tx.CreatedBy != s.ID {
			return domain.ErrForbidden
		}
	}

	if err := h.transactions.Delete(c.Request().Context(), req.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// DownloadExcel streams the full filtered listing as a spreadsheet.
//
// @Summary      Export transactions to Excel
// @Tags         transaksi
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search  query  string  false  "Search term"
// @Success      200  {file}  binary
// @Router       /transaksi/download-excel [get]
func (h *TransactionHandler) DownloadExcel(c echo.Context) error {
	input, err := h.listInput(c, listTransactionsRequest{Search: c.QueryParam("search")})
	if err != nil {
		return err
	}

	// The workbook is buffered so the service-derived filename is known
	// before any headers go out.
	start := time.Now()
	var buf bytes.Buffer
	name, err := h.transactions.ExportExcel(c.Request().Context(), input, &buf)
	if err != nil {
		return err
	}
	metrics.ExcelExportsTotal.Inc()
	metrics.ExportDuration.Observe(time.Since(start).Seconds())

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// listInput converts the request into a service input, scoping cashiers to
// their own entries.
func (h *TransactionHandler) listInput(c echo.Context, req listTransactionsRequest) (ports.ListTransactionsInput, error) {
	s, err := ctxSession(c)
	if err != nil {
		return ports.ListTransactionsInput{}, err
	}

	input := ports.ListTransactionsInput{
		Query: tabular.Query{
			Search:  req.Search,
			Filters: req.Filters,
			Sort:    req.Sort,
		},
		Page: req.Page,
		Size: req.Limit,
	}
	if s.Role == domain.RoleKasir {
		input.CreatedBy = s.ID
	}
	return input, nil
}
