package exporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renewalhq/subtrackr-backend/internal/billing"
	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/db/models"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// csvHeader is the fixed export column set. Order is part of the format.
var csvHeader = []string{
	"Name", "Cost", "Currency", "Billing Cycle", "Category", "Status",
	"Start Date", "Trial End Date", "Cancelled Date", "Notes",
	"Last Used", "Days Since Last Use", "Usage Count",
}

// ExportedSubscription is one subscription in the JSON export. Cost leaves
// the system in major currency units.
type ExportedSubscription struct {
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	Currency         string          `json:"currency"`
	BillingCycle     string          `json:"billingCycle"`
	Category         string          `json:"category"`
	Status           string          `json:"status"`
	StartDate        string          `json:"startDate"`
	TrialEndDate     *string         `json:"trialEndDate"`
	CancelledDate    *string         `json:"cancelledDate"`
	Notes            *string         `json:"notes"`
	LastUsed         *string         `json:"lastUsed"`
	DaysSinceLastUse *int            `json:"daysSinceLastUse"`
	UsageCount       int64           `json:"usageCount"`
}

// JSONExport is the full JSON export payload.
type JSONExport struct {
	ExportedAt    string                 `json:"exportedAt"`
	Settings      models.UserSettings    `json:"settings"`
	Subscriptions []ExportedSubscription `json:"subscriptions"`
}

// ImportResult accounts for a CSV import. Row failures are collected, not
// fatal.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

type subscriptionPort interface {
	List(ctx context.Context, userID uuid.UUID) ([]subscriptions.View, error)
	Create(ctx context.Context, userID uuid.UUID, input subscriptions.CreateInput) (*subscriptions.View, error)
}

type settingsReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
}

// Service renders exports and ingests CSV imports.
type Service interface {
	ExportJSON(ctx context.Context, userID uuid.UUID) (*JSONExport, error)
	ExportCSV(ctx context.Context, userID uuid.UUID) (string, error)
	ImportCSV(ctx context.Context, userID uuid.UUID, r io.Reader) (*ImportResult, error)
}

type service struct {
	subs     subscriptionPort
	settings settingsReader
	now      func() time.Time
}

// NewService builds the exporting service with its required dependencies.
func NewService(subs subscriptionPort, settings settingsReader) (Service, error) {
	if subs == nil {
		return nil, fmt.Errorf("exporting service requires a subscription port")
	}
	if settings == nil {
		return nil, fmt.Errorf("exporting service requires a settings reader")
	}
	return &service{subs: subs, settings: settings, now: time.Now}, nil
}

func (s *service) ExportJSON(ctx context.Context, userID uuid.UUID) (*JSONExport, error) {
	views, err := s.subs.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	exported := make([]ExportedSubscription, 0, len(views))
	for _, view := range views {
		exported = append(exported, exportView(view))
	}

	return &JSONExport{
		ExportedAt:    s.now().UTC().Format(time.RFC3339),
		Settings:      *settings,
		Subscriptions: exported,
	}, nil
}

// ExportCSV renders the fixed 13-column format. Name and Notes are always
// quoted, with embedded quotes doubled; the stdlib csv writer only quotes on
// demand, so rows are assembled by hand.
func (s *service) ExportCSV(ctx context.Context, userID uuid.UUID) (string, error) {
	views, err := s.subs.List(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	b.WriteString("\n")

	for _, view := range views {
		lastUsed := "Never"
		daysSince := "N/A"
		if view.LastUsed != nil {
			lastUsed = view.LastUsed.Format(dateLayout)
		}
		if view.DaysSinceLastUse != nil {
			daysSince = strconv.Itoa(*view.DaysSinceLastUse)
		}

		fields := []string{
			quote(view.Name),
			billing.MajorUnits(view.CostCents).StringFixed(2),
			view.Currency.String(),
			view.BillingCycle.String(),
			view.Category.String(),
			view.Status.String(),
			view.StartDate.Format(dateLayout),
			optionalDate(view.TrialEndDate),
			optionalDate(view.CancelledDate),
			quote(deref(view.Notes)),
			lastUsed,
			daysSince,
			strconv.FormatInt(view.UsageCount, 10),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}

	return b.String(), nil
}

func (s *service) ImportCSV(ctx context.Context, userID uuid.UUID, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable csv")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv has no header row")
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv header is missing a name column")
	}
	if _, ok := columns["cost"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv header is missing a cost column")
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows[1:] {
		rowNum := i + 2
		input, err := s.rowToInput(columns, row)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if _, err := s.subs.Create(ctx, userID, *input); err != nil {
			result.Failed++
			message := err.Error()
			if typed := pkgerrors.As(err); typed != nil {
				message = typed.Message()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rowNum, message))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *service) rowToInput(columns map[string]int, row []string) (*subscriptions.CreateInput, error) {
	name := strings.TrimSpace(cell(columns, row, "name"))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	rawCost := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell(columns, row, "cost")), "$"))
	cost, err := decimal.NewFromString(rawCost)
	if err != nil {
		return nil, fmt.Errorf("invalid cost %q", rawCost)
	}
	cents := cost.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return nil, fmt.Errorf("cost must be positive")
	}

	input := &subscriptions.CreateInput{
		Name:         name,
		CostCents:    cents,
		BillingCycle: "monthly",
		Category:     "other",
		StartDate:    s.now(),
	}

	if cycle := strings.TrimSpace(cell(columns, row, "billingcycle")); cycle != "" {
		input.BillingCycle = strings.ToLower(cycle)
	}
	if category := strings.TrimSpace(cell(columns, row, "category")); category != "" {
		input.Category = strings.ToLower(category)
	}
	if currency := strings.TrimSpace(cell(columns, row, "currency")); currency != "" {
		upper := strings.ToUpper(currency)
		input.Currency = &upper
	}
	if rawDate := strings.TrimSpace(cell(columns, row, "startdate")); rawDate != "" {
		startDate, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q", rawDate)
		}
		input.StartDate = startDate
	}
	if notes := strings.TrimSpace(cell(columns, row, "notes")); notes != "" {
		input.Notes = &notes
	}

	return input, nil
}

// mapHeader indexes columns by their folded header names, so "Billing Cycle",
// "billing_cycle" and "billingCycle" all resolve.
func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		folded := strings.ToLower(strings.TrimSpace(name))
		folded = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(folded)
		if folded != "" {
			columns[folded] = i
		}
	}
	return columns
}

func cell(columns map[string]int, row []string, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func exportView(view subscriptions.View) ExportedSubscription {
	out := ExportedSubscription{
		Name:         view.Name,
		Cost:         billing.MajorUnits(view.CostCents),
		Currency:     view.Currency.String(),
		BillingCycle: view.BillingCycle.String(),
		Category:     view.Category.String(),
		Status:       view.Status.String(),
		StartDate:    view.StartDate.Format(dateLayout),
		Notes:        view.Notes,
		UsageCount:   view.UsageCount,
	}
	if view.TrialEndDate != nil {
		formatted := view.TrialEndDate.Format(dateLayout)
		out.TrialEndDate = &formatted
	}
	if view.CancelledDate != nil {
		formatted := view.CancelledDate.Format(dateLayout)
		out.CancelledDate = &formatted
	}
	if view.LastUsed != nil {
		formatted := view.LastUsed.Format(dateLayout)
		out.LastUsed = &formatted
	}
	out.DaysSinceLastUse = view.DaysSinceLastUse
	return out
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func optionalDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(dateLayout)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
