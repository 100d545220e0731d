package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	TemplatePath  string
	VisitPath     string
	WorksheetPath string
	OutputPath    string
}

// Report is the in-memory result of one generation run.
type Report struct {
	Title     string
	Items     []TechnicalItem
	Costs     []CostItem
	Entries   []ReconciledEntry
	Unpriced  int
	TotalBRL  decimal.Decimal
	Generated GenerateRequest
}

// ReportRun is the history record of a completed run.
type ReportRun struct {
	ID             string          `json:"id"`
	TemplatePath   string          `json:"template_path"`
	VisitPath      string          `json:"visit_path"`
	WorksheetPath  string          `json:"worksheet_path"`
	OutputPath     string          `json:"output_path"`
	SummaryPath    string          `json:"summary_path,omitempty"`
	TechnicalItems int             `json:"technical_items"`
	CostItems      int             `json:"cost_items"`
	MatchedItems   int             `json:"matched_items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}
