// Package portfolio describes the business units a credit note can be
// issued for and detects which one an uploaded report belongs to.
package portfolio

import (
	"strings"

	"github.com/Bryant1523/notasapp/internal/codes"
	"github.com/Bryant1523/notasapp/internal/ingest"
)

// CodeNone is the portfolio of a report nothing could be detected for.
const CodeNone = "--"

// ExportDefaults are the order header values written on every exported row.
type ExportDefaults struct {
	OrderClass string `yaml:"order_class" json:"order_class"`
	SalesOrg   string `yaml:"sales_org" json:"sales_org"`
	Channel    string `yaml:"channel" json:"channel"`
	Sector     string `yaml:"sector" json:"sector"`
	Condition  string `yaml:"condition" json:"condition"`
}

type Profile struct {
	Code           string         `yaml:"code" json:"code"`
	Acronym        string         `yaml:"acronym" json:"acronym"`
	Name           string         `yaml:"name" json:"name"`
	AllowedClasses []string       `yaml:"allowed_classes" json:"allowed_classes"`
	Template       string         `yaml:"template" json:"template,omitempty"`
	Defaults       ExportDefaults `yaml:"defaults" json:"defaults"`

	// detection hints
	SalesOrgs       []string   `yaml:"sales_orgs" json:"-"`
	CompanyKeywords [][]string `yaml:"company_keywords" json:"-"` // every word of one group must appear
	InvoiceClasses  []string   `yaml:"invoice_classes" json:"-"`
}

// None is the profile used when detection fails: no class filter and only
// the default condition on export.
func None() Profile {
	return Profile{
		Code:     CodeNone,
		Acronym:  "SIN_PORTAFOLIO",
		Name:     "Sin portafolio",
		Defaults: ExportDefaults{Condition: "ZNOT"},
	}
}

// Catalog is the ordered list of known profiles. Detection tries them in
// order, so earlier profiles win ambiguous reports.
type Catalog []Profile

func DefaultCatalog() Catalog {
	return Catalog{
		{
			Code:            "R100",
			Acronym:         "PCV",
			Name:            "Pepsi-Cola Venezuela",
			AllowedClasses:  []string{"YP01", "YP04", "YP10"},
			Template:        "plantilla_PCV.xlsx",
			Defaults:        ExportDefaults{OrderClass: "YNCR", SalesOrg: "R200", Channel: "FB", Sector: "E2", Condition: "YLIQ"},
			SalesOrgs:       []string{"R200"},
			CompanyKeywords: [][]string{{"pepsi"}},
			InvoiceClasses:  []string{"YP01", "YP04", "YP10"},
		},
		{
			Code:            "C001",
			Acronym:         "CYM",
			Name:            "Cervecería Polar",
			AllowedClasses:  []string{"YC00"},
			Template:        "plantilla_CYM.xlsx",
			Defaults:        ExportDefaults{OrderClass: "ZCDF", SalesOrg: "C001", Channel: "FB", Sector: "E2", Condition: "ZXAM"},
			SalesOrgs:       []string{"C001"},
			CompanyKeywords: [][]string{{"cervecer"}},
			InvoiceClasses:  []string{"YC00"},
		},
		{
			Code:            "0700",
			Acronym:         "APC",
			Name:            "Alimentos Polar",
			AllowedClasses:  []string{"ZSPN", "X|", "ZSCC"},
			Template:        "plantilla_APC.xlsx",
			Defaults:        ExportDefaults{OrderClass: "Z1MA", SalesOrg: "0702", Channel: "FB", Sector: "E2", Condition: "ZNOT"},
			SalesOrgs:       []string{"0702"},
			CompanyKeywords: [][]string{{"alimentos", "polar"}},
			InvoiceClasses:  []string{"ZSPN", "X|", "ZSCC"},
		},
		{
			Code:            "0600",
			Acronym:         "EFE",
			Name:            "Productos EFE",
			AllowedClasses:  []string{"ZSPN", "ZSCC"},
			Template:        "plantilla_EFE.xlsx",
			Defaults:        ExportDefaults{OrderClass: "Z1MA", SalesOrg: "0602", Channel: "FB", Sector: "E2", Condition: "ZNOT"},
			SalesOrgs:       []string{"0602"},
			CompanyKeywords: [][]string{{"efe"}},
		},
	}
}

// Lookup returns the profile with the given code, or None.
func (c Catalog) Lookup(code string) Profile {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, p := range c {
		if p.Code == code {
			return p
		}
	}
	return None()
}

// Detect looks at the sales organization column first, then the company
// name, then the invoice classes. It returns None when all three fail.
func (c Catalog) Detect(t *ingest.Table, cols ingest.Columns) Profile {
	if orgs := ingest.Distinct(t, cols, ingest.FieldSalesOrg); len(orgs) > 0 {
		if p, ok := c.bySalesOrg(orgs); ok {
			return p
		}
	}
	if companies := ingest.Distinct(t, cols, ingest.FieldCompany); len(companies) > 0 {
		if p, ok := c.byCompany(companies); ok {
			return p
		}
	}
	if classes := ingest.Distinct(t, cols, ingest.FieldInvoiceClass); len(classes) > 0 {
		if p, ok := c.byInvoiceClass(classes); ok {
			return p
		}
	}
	return None()
}

func (c Catalog) bySalesOrg(values []string) (Profile, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[codes.Clean(strings.ToUpper(v))] = struct{}{}
	}
	for _, p := range c {
		for _, org := range p.SalesOrgs {
			if _, ok := seen[codes.Clean(strings.ToUpper(org))]; ok {
				return p, true
			}
		}
	}
	return Profile{}, false
}

func (c Catalog) byCompany(values []string) (Profile, bool) {
	for _, p := range c {
		for _, v := range values {
			if matchesAnyGroup(strings.ToLower(v), p.CompanyKeywords) {
				return p, true
			}
		}
	}
	return Profile{}, false
}

func matchesAnyGroup(value string, groups [][]string) bool {
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		all := true
		for _, word := range group {
			if !strings.Contains(value, strings.ToLower(word)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func (c Catalog) byInvoiceClass(values []string) (Profile, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[strings.ToUpper(v)] = struct{}{}
	}
	for _, p := range c {
		for _, class := range p.InvoiceClasses {
			if _, ok := seen[class]; ok {
				return p, true
			}
		}
	}
	return Profile{}, false
}
