// Package document defines the input contract of the analysis core: the
// extracted document, the financial figures supplied alongside it, and the
// transaction records the fraud detectors consume.
//
// Everything here is immutable during an analysis run. The ingestion layer
// owns creation; this core only reads.
package document

import "time"

// Document is an extracted financial document as supplied by the ingestion
// collaborator. Text is the plain extracted content; DeclaredType is a
// filename or MIME hint and is never trusted as ground truth.
type Document struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	DeclaredType string `json:"declared_type,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

// Transaction is a single dated monetary movement. CounterpartyChain, when
// present, is the ordered list of parties the money passed through and is
// used for circular-flow checks.
type Transaction struct {
	Amount            float64   `json:"amount"`
	Date              time.Time `json:"date"`
	Description       string    `json:"description,omitempty"`
	CounterpartyChain []string  `json:"counterparty_chain,omitempty"`
}

// FinancialFigures holds the named numeric fields extracted from a document
// or supplied by the caller. Optional fields are pointers so that "absent"
// stays distinguishable from zero: a missing field must propagate as
// insufficient data, never be coerced to 0.
type FinancialFigures struct {
	Revenue            *float64 `json:"revenue,omitempty"`
	EBITDA             *float64 `json:"ebitda,omitempty"`
	NetIncome          *float64 `json:"net_income,omitempty"`
	Assets             *float64 `json:"assets,omitempty"`
	Liabilities        *float64 `json:"liabilities,omitempty"`
	Equity             *float64 `json:"equity,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	Receivables        *float64 `json:"receivables,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`

	// Expenses maps an expense category (marketing, rnd, admin, ...) to its
	// reported amount for the period.
	Expenses map[string]float64 `json:"expenses,omitempty"`

	// QuarterlyRevenue is the revenue series in chronological order.
	QuarterlyRevenue []float64 `json:"quarterly_revenue,omitempty"`

	// LineItems are all numeric line items found in the document, used for
	// digit-distribution tests.
	LineItems []float64 `json:"line_items,omitempty"`

	// Transactions are ordered by date. The core deliberately does not
	// deduplicate them; duplication is a fraud signal in its own right.
	Transactions []Transaction `json:"transactions,omitempty"`
}

// Ptr returns a pointer to v. Convenience for building FinancialFigures.
func Ptr(v float64) *float64 { return &v }

// scalar field names accepted by FromMap. Unknown keys are ignored, not an
// error, per the input contract.
var scalarFields = map[string]func(*FinancialFigures, float64){
	"revenue":             func(f *FinancialFigures, v float64) { f.Revenue = &v },
	"ebitda":              func(f *FinancialFigures, v float64) { f.EBITDA = &v },
	"net_income":          func(f *FinancialFigures, v float64) { f.NetIncome = &v },
	"assets":              func(f *FinancialFigures, v float64) { f.Assets = &v },
	"liabilities":         func(f *FinancialFigures, v float64) { f.Liabilities = &v },
	"equity":              func(f *FinancialFigures, v float64) { f.Equity = &v },
	"current_assets":      func(f *FinancialFigures, v float64) { f.CurrentAssets = &v },
	"current_liabilities": func(f *FinancialFigures, v float64) { f.CurrentLiabilities = &v },
	"receivables":         func(f *FinancialFigures, v float64) { f.Receivables = &v },
	"total_debt":          func(f *FinancialFigures, v float64) { f.TotalDebt = &v },
}

// FromMap builds FinancialFigures from a map of named numbers. Unknown keys
// are silently ignored.
func FromMap(m map[string]float64) *FinancialFigures {
	f := &FinancialFigures{}
	for k, v := range m {
		if set, ok := scalarFields[k]; ok {
			set(f, v)
		}
	}
	return f
}

// Ratio names produced by Ratios. Shared vocabulary with the industry
// benchmark table in the fraud package.
const (
	RatioDebtToEquity   = "debt_to_equity"
	RatioCurrent        = "current_ratio"
	RatioNetMargin      = "net_margin"
	RatioAssetTurnover  = "asset_turnover"
	RatioDaysReceivable = "days_receivable"
)

// Ratios derives the standard financial ratios from whichever fields are
// present. A ratio is omitted when a required field is missing or its
// denominator is zero; callers treat omission as insufficient data.
func (f *FinancialFigures) Ratios() map[string]float64 {
	ratios := make(map[string]float64)
	if f == nil {
		return ratios
	}

	debt := f.TotalDebt
	if debt == nil {
		debt = f.Liabilities
	}
	if debt != nil && f.Equity != nil && *f.Equity != 0 {
		ratios[RatioDebtToEquity] = *debt / *f.Equity
	}
	if f.CurrentAssets != nil && f.CurrentLiabilities != nil && *f.CurrentLiabilities != 0 {
		ratios[RatioCurrent] = *f.CurrentAssets / *f.CurrentLiabilities
	}
	if f.NetIncome != nil && f.Revenue != nil && *f.Revenue != 0 {
		ratios[RatioNetMargin] = *f.NetIncome / *f.Revenue
	}
	if f.Revenue != nil && f.Assets != nil && *f.Assets != 0 {
		ratios[RatioAssetTurnover] = *f.Revenue / *f.Assets
	}
	if f.Receivables != nil && f.Revenue != nil && *f.Revenue != 0 {
		ratios[RatioDaysReceivable] = *f.Receivables / *f.Revenue * 365
	}
	return ratios
}

// TransactionAmounts returns the amount column of the transaction list.
func (f *FinancialFigures) TransactionAmounts() []float64 {
	if f == nil || len(f.Transactions) == 0 {
		return nil
	}
	amounts := make([]float64, len(f.Transactions))
	for i, t := range f.Transactions {
		amounts[i] = t.Amount
	}
	return amounts
}

// AllLineItems returns every numeric value known for the document: declared
// line items plus transaction amounts. This is the input population for the
// digit-distribution test.
func (f *FinancialFigures) AllLineItems() []float64 {
	if f == nil {
		return nil
	}
	out := make([]float64, 0, len(f.LineItems)+len(f.Transactions))
	out = append(out, f.LineItems...)
	out = append(out, f.TransactionAmounts()...)
	return out
}
