// Package printing renders invoices to HTML and PDF.
package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	appinvoicing "github.com/nasrosoft/invoice-generator-saas/internal/application/invoicing"
)

//go:embed templates/invoice.html
var embeddedTemplates embed.FS

const invoiceTemplateName = "invoice.html"

// TemplateEngine renders invoice documents to HTML using html/template.
// By default it uses the embedded invoice template; a template directory
// may be supplied to override it.
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine loads the invoice template from templateDir, falling
// back to the embedded template when templateDir is empty.
func NewTemplateEngine(templateDir string) (*TemplateEngine, error) {
	var (
		content []byte
		err     error
	)
	if templateDir != "" {
		content, err = os.ReadFile(filepath.Join(templateDir, invoiceTemplateName))
		if err != nil {
			return nil, fmt.Errorf("failed to read invoice template: %w", err)
		}
	} else {
		content, err = embeddedTemplates.ReadFile("templates/" + invoiceTemplateName)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded invoice template: %w", err)
		}
	}

	tmpl, err := template.New(invoiceTemplateName).Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}

	return &TemplateEngine{tmpl: tmpl}, nil
}

// Render binds an invoice document to the template and returns the HTML.
func (e *TemplateEngine) Render(doc appinvoicing.InvoiceDocument) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to execute invoice template: %w", err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatMoney":   formatMoney,
		"formatAmount":  formatAmount,
		"formatRate":    formatRate,
		"formatDate":    formatDate,
		"formatDatePtr": formatDatePtr,
		"quantity":      formatQuantity,
		"title":         titleCase,
		"upper":         strings.ToUpper,
	}
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "CA$",
	"AUD": "A$",
	"JPY": "¥",
}

// formatMoney formats an amount with its currency symbol and thousand
// separators. Example: 1234.5 USD -> "$1,234.50".
func formatMoney(currency string, v decimal.Decimal) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	return symbol + formatAmount(v)
}

// formatAmount formats an amount to two decimal places with thousand
// separators and no currency symbol.
func formatAmount(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}

	parts := strings.SplitN(v.StringFixed(2), ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}

	return sign + b.String() + "." + parts[1]
}

// formatRate renders a percentage rate, trimming insignificant zeros.
// Example: 8.25 -> "8.25%", 10 -> "10%".
func formatRate(v decimal.Decimal) string {
	return v.String() + "%"
}

// formatQuantity trims trailing zeros from a quantity. Example: 2.5000 -> "2.5".
func formatQuantity(v decimal.Decimal) string {
	return v.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
