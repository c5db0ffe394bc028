package invoice

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

const testStylesheet = `<?xml version="1.0" encoding="UTF-8"?>
<xsl:stylesheet version="1.0" xmlns:xsl="http://www.w3.org/1999/XSL/Transform">
  <xsl:template match="/">
    <div class="factura" data-folio="{factura/encabezado/folio}">
      <h2>Factura <xsl:value-of select="factura/encabezado/folio"/></h2>
      <p class="fecha"><xsl:value-of select="factura/encabezado/fecha"/></p>
      <p class="cliente"><xsl:value-of select="factura/cliente/nombre"/> (<xsl:value-of select="factura/cliente/email"/>)</p>
      <table class="items">
        <xsl:for-each select="factura/items/item">
          <tr>
            <td><xsl:value-of select="codigo"/></td>
            <td><xsl:value-of select="nombre"/></td>
            <td><xsl:value-of select="cantidad"/></td>
            <td><xsl:value-of select="importe"/></td>
          </tr>
        </xsl:for-each>
      </table>
      <p class="total">Total: $<xsl:value-of select="factura/totales/total"/></p>
    </div>
  </xsl:template>
</xsl:stylesheet>`

const testInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<factura>
  <encabezado>
    <id>5</id>
    <folio>F-2026-0005</folio>
    <fecha>2026-08-30</fecha>
  </encabezado>
  <cliente>
    <nombre>Raúl &amp; Hijos</nombre>
    <email>raul@example.com</email>
  </cliente>
  <items>
    <item>
      <codigo>A1</codigo>
      <nombre>Anillo de oro</nombre>
      <cantidad>2</cantidad>
      <precio_unitario>150.00</precio_unitario>
      <importe>300.00</importe>
    </item>
    <item>
      <codigo>B2</codigo>
      <nombre>Collar de plata</nombre>
      <cantidad>1</cantidad>
      <precio_unitario>89.50</precio_unitario>
      <importe>89.50</importe>
    </item>
  </items>
  <totales>
    <subtotal>389.50</subtotal>
    <impuestos>62.32</impuestos>
    <total>451.82</total>
  </totales>
</factura>`

func parseInvoice(t *testing.T, data string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes([]byte(data)))
	return doc
}

func TestStylesheet_Apply(t *testing.T) {
	sheet, err := ParseStylesheet([]byte(testStylesheet))
	require.NoError(t, err)

	fragment, err := sheet.Apply(parseInvoice(t, testInvoice))
	require.NoError(t, err)

	sel, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)

	require.Equal(t, "Factura F-2026-0005", sel.Find("h2").Text())
	require.Equal(t, "2026-08-30", sel.Find("p.fecha").Text())
	require.Equal(t, "Raúl & Hijos (raul@example.com)", sel.Find("p.cliente").Text())
	require.Equal(t, "Total: $451.82", sel.Find("p.total").Text())

	rows := sel.Find("table.items tr")
	require.Equal(t, 2, rows.Length())
	first := rows.First().Find("td")
	require.Equal(t, "A1", first.Eq(0).Text())
	require.Equal(t, "Anillo de oro", first.Eq(1).Text())
	require.Equal(t, "2", first.Eq(2).Text())
	require.Equal(t, "300.00", first.Eq(3).Text())

	folio, ok := sel.Find("div.factura").Attr("data-folio")
	require.True(t, ok, "interpolated attribute missing")
	require.Equal(t, "F-2026-0005", folio)
}

func TestStylesheet_EscapesTextOutput(t *testing.T) {
	sheet, err := ParseStylesheet([]byte(testStylesheet))
	require.NoError(t, err)

	hostile := strings.Replace(testInvoice,
		"Raúl &amp; Hijos", "&lt;script&gt;alert(1)&lt;/script&gt;", 1)
	fragment, err := sheet.Apply(parseInvoice(t, hostile))
	require.NoError(t, err)

	require.NotContains(t, fragment, "<script>")
	require.Contains(t, fragment, "&lt;script&gt;")
}

func TestStylesheet_UnmatchedSelectYieldsEmptyText(t *testing.T) {
	sheet, err := ParseStylesheet([]byte(testStylesheet))
	require.NoError(t, err)

	minimal := `<factura><encabezado><folio>F-1</folio></encabezado></factura>`
	fragment, err := sheet.Apply(parseInvoice(t, minimal))
	require.NoError(t, err)

	sel, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	require.Equal(t, "Factura F-1", sel.Find("h2").Text())
	require.Equal(t, "", sel.Find("p.fecha").Text())
	require.Equal(t, 0, sel.Find("table.items tr").Length())
}

func TestParseStylesheet_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not xml", `this is not xml`},
		{"wrong root", `<html xmlns:xsl="http://www.w3.org/1999/XSL/Transform"/>`},
		{
			"no xslt namespace",
			`<xsl:stylesheet xmlns:xsl="http://example.com/not-xslt"><xsl:template match="/"/></xsl:stylesheet>`,
		},
		{
			"no root template",
			`<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform"><xsl:template match="factura"/></xsl:stylesheet>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStylesheet([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestStylesheet_UnsupportedInstruction(t *testing.T) {
	sheet, err := ParseStylesheet([]byte(`<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform">
  <xsl:template match="/"><xsl:apply-templates/></xsl:template>
</xsl:stylesheet>`))
	require.NoError(t, err)

	_, err = sheet.Apply(parseInvoice(t, testInvoice))
	require.Error(t, err)
	require.Contains(t, err.Error(), "apply-templates")
}
