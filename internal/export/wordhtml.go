package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"bookdist/internal/calc"
	"bookdist/pkg/domain"
)

const reportTitle = "تقرير توزيع الكتب المدرسية"

const wordHead = `<html xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta http-equiv=Content-Type content="text/html; charset=utf-8">
<title>` + reportTitle + `</title>
<style>
    @page Section1 { size:8.5in 11.0in; margin:1.0in 1.0in 1.0in 1.0in; }
    div.Section1 { page:Section1; }
    body { font-family: 'Arial', sans-serif; direction: rtl; text-align: right; }
    h1 { font-size: 20pt; color: #2F5496; border-bottom: 2px solid #BFBFBF; padding-bottom: 8px; margin-bottom: 16px; }
    h2 { font-size: 16pt; color: #4472C4; border-bottom: 1px solid #D9D9D9; padding-bottom: 4px; margin-top: 24px; margin-bottom: 12px; }
    h3.date-header { font-size: 12pt; color: #595959; font-weight: normal; margin-bottom: 24px; }
    div.subject-report { margin-bottom: 12px; padding-bottom: 12px; border-bottom: 1px dotted #D9D9D9; }
    div.subject-report:last-child { border-bottom: none; }
    p { margin: 4px 0; font-size: 11pt; }
    p.subject-name { font-weight: bold; font-size: 12pt; }
</style>
</head>
<body>
<div class=Section1>
<h1>` + reportTitle + `</h1>
`

// buildWordHTML renders the narrative report and returns the number of
// subject blocks written.
func buildWordHTML(schools []domain.School, when *time.Time) ([]byte, int) {
	buf := &strings.Builder{}
	buf.WriteString(wordHead)
	if when != nil {
		fmt.Fprintf(buf, "<h3 class=\"date-header\">تاريخ العملية: %s</h3>\n", arabicDateTime(*when))
	}
	subjects := 0
	for _, school := range schools {
		fmt.Fprintf(buf, "<h1>%s</h1>\n", html.EscapeString(school.DisplayName()))
		for _, class := range school.Classes {
			fmt.Fprintf(buf, "<h2>%s</h2>\n", html.EscapeString(class.Name))
			for _, subject := range class.Subjects {
				writeSubjectBlock(buf, subject)
				subjects++
			}
		}
	}
	buf.WriteString("</div></body></html>")
	return []byte(buf.String()), subjects
}

func writeSubjectBlock(buf *strings.Builder, subject domain.Subject) {
	buf.WriteString(`<div class="subject-report">`)
	fmt.Fprintf(buf, `<p class="subject-name">%s</p>`, html.EscapeString(subject.DisplayName()))
	if subject.Incomplete() {
		fmt.Fprintf(buf, "<p>%s</p>", calc.IncompleteMarker)
	} else {
		res := calc.Calculate(subject.Students, subject.Distribution, subject.BooksPerCarton)
		fmt.Fprintf(buf, "<p><strong>الحساب لـ:</strong> %s</p>", res.TotalLine())
		fmt.Fprintf(buf, "<p><strong>الكمية:</strong> %s</p>", res.QuantityLine())
		fmt.Fprintf(buf, "<p><strong>تفصيل الكرتون:</strong> %s</p>", res.BreakdownLine())
	}
	buf.WriteString("</div>\n")
}

var arabicDigits = strings.NewReplacer(
	"0", "٠", "1", "١", "2", "٢", "3", "٣", "4", "٤",
	"5", "٥", "6", "٦", "7", "٧", "8", "٨", "9", "٩",
)

// arabicDateTime formats t as D/M/YYYY، h:mm:ss with an AM/PM marker, in
// Arabic-Indic digits.
func arabicDateTime(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	marker := "ص"
	if t.Hour() >= 12 {
		marker = "م"
	}
	s := fmt.Sprintf("%d/%d/%d، %d:%02d:%02d %s", t.Day(), int(t.Month()), t.Year(), hour, t.Minute(), t.Second(), marker)
	return arabicDigits.Replace(s)
}
