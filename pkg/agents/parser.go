package agents

import (
	"context"
	"fmt"
	"strings"
)

// financial vocabulary used for the document-signal heuristic.
var financialKeywords = []string{
	"revenue", "income", "expense", "asset", "liability", "equity",
	"balance", "statement", "quarter", "fiscal", "audit", "earnings",
	"cash flow", "depreciation", "receivable", "payable",
}

// Parser validates that the document carries plausible financial-document
// signal: extractable text with enough financial vocabulary and numeric
// content. Ambiguity surfaces as a low-confidence finding.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

func (p *Parser) Type() Type { return TypeParser }

func (p *Parser) Run(_ context.Context, in Input) Result {
	return timed(TypeParser, func() ([]Finding, float64) {
		var findings []Finding

		lower := strings.ToLower(in.Document.Text)
		keywords := 0
		for _, kw := range financialKeywords {
			if strings.Contains(lower, kw) {
				keywords++
			}
		}
		amounts := 0
		companies := 0
		dates := 0
		if in.Extraction != nil {
			amounts = len(in.Extraction.EntitiesOf("amount"))
			companies = len(in.Extraction.EntitiesOf("company"))
			dates = len(in.Extraction.EntitiesOf("date"))
		}

		// Signal heuristic: vocabulary plus numeric density.
		signal := float64(keywords)*5 + float64(amounts)*3
		if signal > 100 {
			signal = 100
		}

		switch {
		case keywords >= 4 && amounts >= 3:
			findings = append(findings, NewFinding(
				fmt.Sprintf("document reads as a financial statement: %d financial terms, %d monetary amounts", keywords, amounts), 90))
		case keywords >= 2 || amounts >= 1:
			findings = append(findings, NewFinding(
				fmt.Sprintf("ambiguous financial-document signal: only %d financial terms and %d monetary amounts found", keywords, amounts), 55))
		default:
			findings = append(findings, NewFinding(
				"document shows no financial-document signal; declared type may be wrong", 40))
		}

		if companies > 0 {
			findings = append(findings, NewFinding(
				fmt.Sprintf("identified %d company reference(s)", companies), 85))
		}
		if dates > 0 {
			findings = append(findings, NewFinding(
				fmt.Sprintf("document contains %d date reference(s)", dates), 80))
		}
		if in.Document.DeclaredType != "" && !strings.Contains(lower, "statement") && keywords == 0 {
			findings = append(findings, NewFinding(
				fmt.Sprintf("declared type %q is not supported by document content", in.Document.DeclaredType), 50))
		}

		confidence := 0.5 + signal/200 // 0.5-1.0
		return findings, confidence
	})
}
