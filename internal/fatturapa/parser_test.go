package fatturapa

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassignana/kruscotto/internal/models"
)

const issuedWithTermsXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:FatturaElettronica versione="FPR12" xmlns:p="http://ivaservizi.agenziaentrate.gov.it/docs/xsd/fatture/v1.2">
  <FatturaElettronicaHeader>
    <CedentePrestatore>
      <DatiAnagrafici>
        <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>01234567890</IdCodice></IdFiscaleIVA>
        <Anagrafica><Denominazione>Azienda Demo SRL</Denominazione></Anagrafica>
      </DatiAnagrafici>
    </CedentePrestatore>
    <CessionarioCommittente>
      <DatiAnagrafici>
        <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>09876543210</IdCodice></IdFiscaleIVA>
        <Anagrafica><Denominazione>Cliente SpA</Denominazione></Anagrafica>
      </DatiAnagrafici>
    </CessionarioCommittente>
  </FatturaElettronicaHeader>
  <FatturaElettronicaBody>
    <DatiGenerali>
      <DatiGeneraliDocumento>
        <Numero>2024-001</Numero>
        <Data>2024-01-15</Data>
        <ImportoTotaleDocumento>1000.00</ImportoTotaleDocumento>
      </DatiGeneraliDocumento>
    </DatiGenerali>
    <DatiPagamento>
      <DettaglioPagamento>
        <DataScadenzaPagamento>2024-02-29</DataScadenzaPagamento>
        <ImportoPagamento>600.00</ImportoPagamento>
        <IstitutoFinanziario>Banca Intesa</IstitutoFinanziario>
        <IBAN>IT60X0542811101000000123456</IBAN>
      </DettaglioPagamento>
      <DettaglioPagamento>
        <DataScadenzaPagamento>2024-03-31</DataScadenzaPagamento>
        <ImportoPagamento>400.00</ImportoPagamento>
      </DettaglioPagamento>
    </DatiPagamento>
  </FatturaElettronicaBody>
</p:FatturaElettronica>`

const receivedNoTermsXML = `<?xml version="1.0" encoding="UTF-8"?>
<FatturaElettronica versione="FPR12">
  <FatturaElettronicaHeader>
    <CedentePrestatore>
      <DatiAnagrafici>
        <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>11122233344</IdCodice></IdFiscaleIVA>
        <Anagrafica><Denominazione>Fornitore SNC</Denominazione></Anagrafica>
      </DatiAnagrafici>
    </CedentePrestatore>
    <CessionarioCommittente>
      <DatiAnagrafici>
        <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>01234567890</IdCodice></IdFiscaleIVA>
        <Anagrafica><Nome>Mario</Nome><Cognome>Rossi</Cognome></Anagrafica>
      </DatiAnagrafici>
    </CessionarioCommittente>
  </FatturaElettronicaHeader>
  <FatturaElettronicaBody>
    <DatiGenerali>
      <DatiGeneraliDocumento>
        <Numero>77/PA</Numero>
        <Data>2024-01-31</Data>
        <ImportoTotaleDocumento>250.50</ImportoTotaleDocumento>
      </DatiGeneraliDocumento>
    </DatiGenerali>
  </FatturaElettronicaBody>
</FatturaElettronica>`

func TestParseIssuedInvoiceWithExplicitTerms(t *testing.T) {
	inv, err := Parse(strings.NewReader(issuedWithTermsXML))
	require.NoError(t, err)

	assert.Equal(t, "2024-001", inv.Number)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), inv.DocumentDate)
	assert.Equal(t, "1000.00", inv.Total.StringFixed(2))
	assert.Equal(t, "01234567890", inv.SupplierVAT)
	assert.Equal(t, "Azienda Demo SRL", inv.SupplierName)
	assert.Equal(t, "09876543210", inv.CustomerVAT)
	assert.Equal(t, "Cliente SpA", inv.CustomerName)

	require.Len(t, inv.Terms, 2)
	assert.Equal(t, "600.00", inv.Terms[0].Amount.StringFixed(2))
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), inv.Terms[0].DueDate)
	assert.Equal(t, "Banca Intesa", inv.Terms[0].Bank)
	assert.Equal(t, "IT60X0542811101000000123456", inv.Terms[0].IBAN)
	assert.Equal(t, "400.00", inv.Terms[1].Amount.StringFixed(2))
}

func TestParseReceivedInvoiceWithoutTerms(t *testing.T) {
	inv, err := Parse(strings.NewReader(receivedNoTermsXML))
	require.NoError(t, err)

	assert.Equal(t, "77/PA", inv.Number)
	assert.Equal(t, "250.50", inv.Total.StringFixed(2))
	assert.Equal(t, "Mario Rossi", inv.CustomerName)
	assert.Empty(t, inv.Terms)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"not xml":        "this is not xml",
		"missing number": strings.Replace(receivedNoTermsXML, "<Numero>77/PA</Numero>", "", 1),
		"bad date":       strings.Replace(receivedNoTermsXML, "2024-01-31", "31/01/2024", 1),
		"bad total":      strings.Replace(receivedNoTermsXML, "250.50", "duecento", 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrMalformedXML)
		})
	}
}

func TestClassify(t *testing.T) {
	issued, err := Parse(strings.NewReader(issuedWithTermsXML))
	require.NoError(t, err)
	received, err := Parse(strings.NewReader(receivedNoTermsXML))
	require.NoError(t, err)

	kind, err := Classify(issued, "01234567890")
	require.NoError(t, err)
	assert.Equal(t, models.KindInvoiceIssued, kind)

	kind, err = Classify(received, "01234567890")
	require.NoError(t, err)
	assert.Equal(t, models.KindInvoiceReceived, kind)

	_, err = Classify(issued, "00000000000")
	assert.ErrorIs(t, err, ErrNotOurInvoice)

	_, err = Classify(issued, "")
	assert.Error(t, err)
}

func TestCounterparty(t *testing.T) {
	issued, err := Parse(strings.NewReader(issuedWithTermsXML))
	require.NoError(t, err)

	name, vat := issued.Counterparty(models.KindInvoiceIssued)
	assert.Equal(t, "Cliente SpA", name)
	assert.Equal(t, "09876543210", vat)

	name, vat = issued.Counterparty(models.KindInvoiceReceived)
	assert.Equal(t, "Azienda Demo SRL", name)
	assert.Equal(t, "01234567890", vat)
}

func TestDefaultDueDate(t *testing.T) {
	// End of the month after the document month, month-length aware.
	assert.Equal(t,
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		DefaultDueDate(time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		DefaultDueDate(time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)))
}

func TestCashAccountFor(t *testing.T) {
	assert.Equal(t, "Banca Intesa", CashAccountFor(Term{Bank: "Banca Intesa", IBAN: "IT00"}))
	assert.Equal(t, "IT00", CashAccountFor(Term{IBAN: "IT00"}))
	assert.Equal(t, models.CashAccountUnspecified, CashAccountFor(Term{}))
}
