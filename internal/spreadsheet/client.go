package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ignatzorin/cfp-backend/internal/config"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
)

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// ErrSheetNotFound лист с таким названием отсутствует в документе.
var ErrSheetNotFound = errors.New("spreadsheet: sheet not found")

// APIError ответ Sheets API с кодом ошибки.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spreadsheet: api status %d: %s", e.Status, e.Message)
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type valueRange struct {
	Range          string          `json:"range,omitempty"`
	MajorDimension string          `json:"majorDimension,omitempty"`
	Values         [][]interface{} `json:"values"`
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// Client тонкая обёртка над Google Sheets REST API v4.
type Client struct {
	http          *resty.Client
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewClient авторизуется сервисным аккаунтом из файла credentials.
func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: не удалось прочитать credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: некорректные credentials: %w", err)
	}

	return NewClientWithHTTP(oauth2.NewClient(ctx, creds.TokenSource), cfg.BaseURL, cfg.SpreadsheetID), nil
}

// NewClientWithHTTP собирает клиент поверх готового http.Client.
func NewClientWithHTTP(httpClient *http.Client, baseURL, spreadsheetID string) *Client {
	rc := resty.NewWithClient(httpClient).
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(300*time.Millisecond).
		AddRetryCondition(retryReads).
		SetHeader("Accept", "application/json")

	return &Client{
		http:          rc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}
}

// retryReads повторяет только GET: append и batchUpdate не идемпотентны.
func retryReads(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
}

// ReadValues читает все значения листа как строки.
func (c *Client) ReadValues(ctx context.Context, sheet string) ([][]string, error) {
	var out valueRange
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": c.spreadsheetID, "range": sheet}).
		SetQueryParam("valueRenderOption", "UNFORMATTED_VALUE").
		SetResult(&out).
		SetError(&apiErrorBody{}).
		Get("/v4/spreadsheets/{id}/values/{range}")
	if err := checkResponse("read", resp, err); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(out.Values))
	for _, raw := range out.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = cellString(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendValues добавляет строки в конец листа.
func (c *Client) AppendValues(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": c.spreadsheetID, "range": sheet}).
		SetQueryParams(map[string]string{
			"valueInputOption": "RAW",
			"insertDataOption": "INSERT_ROWS",
		}).
		SetBody(valueRange{MajorDimension: "ROWS", Values: values}).
		SetError(&apiErrorBody{}).
		Post("/v4/spreadsheets/{id}/values/{range}:append")
	return checkResponse("append", resp, err)
}

// DeleteRow удаляет строку листа по индексу с нуля (0 это заголовок).
func (c *Client) DeleteRow(ctx context.Context, sheet string, index int) error {
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"requests": []map[string]interface{}{{
			"deleteDimension": map[string]interface{}{
				"range": map[string]interface{}{
					"sheetId":    sheetID,
					"dimension":  "ROWS",
					"startIndex": index,
					"endIndex":   index + 1,
				},
			},
		}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", c.spreadsheetID).
		SetBody(body).
		SetError(&apiErrorBody{}).
		Post("/v4/spreadsheets/{id}:batchUpdate")
	return checkResponse("delete", resp, err)
}

// sheetID ищет числовой id листа по названию и запоминает его.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	var meta spreadsheetMeta
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", c.spreadsheetID).
		SetQueryParam("fields", "sheets.properties").
		SetResult(&meta).
		SetError(&apiErrorBody{}).
		Get("/v4/spreadsheets/{id}")
	if err := checkResponse("meta", resp, err); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range meta.Sheets {
		c.sheetIDs[s.Properties.Title] = s.Properties.SheetID
	}
	id, ok = c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSheetNotFound, title)
	}
	return id, nil
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		metrics.SheetRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("spreadsheet: %s: %w", op, err)
	}
	if resp.IsError() {
		metrics.SheetRequests.WithLabelValues(op, "error").Inc()
		apiErr := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
		if body, ok := resp.Error().(*apiErrorBody); ok && body.Error.Message != "" {
			apiErr.Message = body.Error.Message
		}
		return apiErr
	}
	metrics.SheetRequests.WithLabelValues(op, "ok").Inc()
	return nil
}

// cellString приводит значение ячейки к строке; большие числа без экспоненты.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
