package export

import (
	"strconv"
	"strings"
)

const worksheetName = "بيانات الكتب"

const spreadsheetHeader = `<?xml version="1.0" encoding="UTF-8"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
  xmlns:o="urn:schemas-microsoft-com:office:office"
  xmlns:x="urn:schemas-microsoft-com:office:excel"
  xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet"
  xmlns:html="http://www.w3.org/TR/REC-html40">
  <Worksheet ss:Name="` + worksheetName + `">
    <Table>`

const spreadsheetFooter = `</Table>
  </Worksheet>
</Workbook>`

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func buildSpreadsheetML(rows []Row) []byte {
	buf := &strings.Builder{}
	buf.WriteString("\ufeff")
	buf.WriteString(spreadsheetHeader)
	buf.WriteString("<Row>")
	for _, h := range TabularHeaders {
		writeStringCell(buf, h)
	}
	buf.WriteString("</Row>")
	for _, row := range rows {
		buf.WriteString("<Row>")
		writeStringCell(buf, row.School)
		writeStringCell(buf, row.Class)
		writeStringCell(buf, row.Subject)
		writeNumberCell(buf, row.Students)
		writeNumberCell(buf, row.Distribution)
		writeNumberCell(buf, row.BooksPerCarton)
		writeNumberCell(buf, row.TotalBooks)
		writeStringCell(buf, row.Quantity)
		buf.WriteString("</Row>")
	}
	buf.WriteString(spreadsheetFooter)
	return []byte(buf.String())
}

func writeStringCell(buf *strings.Builder, v string) {
	buf.WriteString(`<Cell><Data ss:Type="String">`)
	buf.WriteString(xmlEscaper.Replace(v))
	buf.WriteString("</Data></Cell>")
}

func writeNumberCell(buf *strings.Builder, v int) {
	buf.WriteString(`<Cell><Data ss:Type="Number">`)
	buf.WriteString(strconv.Itoa(v))
	buf.WriteString("</Data></Cell>")
}
