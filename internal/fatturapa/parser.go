// Package fatturapa reads the subset of the Italian electronic invoice
// format (FatturaPA) this application cares about: document identity, the
// declared total, the two parties, and any explicit payment terms.
//
// Extraction is flat tag lookup against the documented paths; fields this
// application does not use are ignored. Values stay strings inside the XML
// structs and are converted in one place, so a malformed date or amount is
// reported against its file instead of panicking mid-decode.
package fatturapa

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bassignana/kruscotto/internal/money"
)

// ErrMalformedXML wraps any decode failure on an uploaded file.
var ErrMalformedXML = errors.New("malformed FatturaPA XML")

const dateLayout = "2006-01-02"

// Invoice is the extracted, converted content of one FatturaPA file.
type Invoice struct {
	Number           string
	DocumentDate     time.Time
	Total            decimal.Decimal
	SupplierVAT      string
	SupplierName     string
	CustomerVAT      string
	CustomerTaxCode  string
	CustomerName     string
	Terms            []Term
}

// Term is one explicit DettaglioPagamento row from the XML.
type Term struct {
	DueDate time.Time
	Amount  decimal.Decimal
	Bank    string
	IBAN    string
}

// Wire structs. Namespaces differ across emitters (p:, ns2:, none), so tags
// match on local names only.
type fatturaXML struct {
	XMLName xml.Name
	Header  headerXML `xml:"FatturaElettronicaHeader"`
	Body    bodyXML   `xml:"FatturaElettronicaBody"`
}

type headerXML struct {
	Supplier partyXML `xml:"CedentePrestatore>DatiAnagrafici"`
	Customer partyXML `xml:"CessionarioCommittente>DatiAnagrafici"`
}

type partyXML struct {
	VATNumber string `xml:"IdFiscaleIVA>IdCodice"`
	TaxCode   string `xml:"CodiceFiscale"`
	Name      string `xml:"Anagrafica>Denominazione"`
	FirstName string `xml:"Anagrafica>Nome"`
	LastName  string `xml:"Anagrafica>Cognome"`
}

type bodyXML struct {
	Number   string       `xml:"DatiGenerali>DatiGeneraliDocumento>Numero"`
	Date     string       `xml:"DatiGenerali>DatiGeneraliDocumento>Data"`
	Total    string       `xml:"DatiGenerali>DatiGeneraliDocumento>ImportoTotaleDocumento"`
	Payments []paymentXML `xml:"DatiPagamento>DettaglioPagamento"`
}

type paymentXML struct {
	DueDate string `xml:"DataScadenzaPagamento"`
	Amount  string `xml:"ImportoPagamento"`
	Bank    string `xml:"IstitutoFinanziario"`
	IBAN    string `xml:"IBAN"`
}

// Parse decodes one FatturaPA document from r.
func Parse(r io.Reader) (*Invoice, error) {
	var raw fatturaXML
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	if raw.Body.Number == "" {
		return nil, fmt.Errorf("%w: campo Numero mancante", ErrMalformedXML)
	}
	docDate, err := time.Parse(dateLayout, raw.Body.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: campo Data non valido: %q", ErrMalformedXML, raw.Body.Date)
	}
	total, err := money.Parse(raw.Body.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: campo ImportoTotaleDocumento non valido: %q", ErrMalformedXML, raw.Body.Total)
	}

	inv := &Invoice{
		Number:          raw.Body.Number,
		DocumentDate:    docDate,
		Total:           total,
		SupplierVAT:     raw.Header.Supplier.VATNumber,
		SupplierName:    raw.Header.Supplier.displayName(),
		CustomerVAT:     raw.Header.Customer.VATNumber,
		CustomerTaxCode: raw.Header.Customer.TaxCode,
		CustomerName:    raw.Header.Customer.displayName(),
	}

	for _, p := range raw.Body.Payments {
		// Rows without an explicit due date carry no schedulable term.
		if p.DueDate == "" {
			continue
		}
		due, err := time.Parse(dateLayout, p.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: campo DataScadenzaPagamento non valido: %q", ErrMalformedXML, p.DueDate)
		}
		amount, err := money.Parse(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: campo ImportoPagamento non valido: %q", ErrMalformedXML, p.Amount)
		}
		inv.Terms = append(inv.Terms, Term{DueDate: due, Amount: amount, Bank: p.Bank, IBAN: p.IBAN})
	}

	return inv, nil
}

// displayName prefers the legal name, falling back to first/last name for
// natural persons.
func (p partyXML) displayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.FirstName != "" || p.LastName != "" {
		name := p.FirstName
		if p.LastName != "" {
			if name != "" {
				name += " "
			}
			name += p.LastName
		}
		return name
	}
	return ""
}
