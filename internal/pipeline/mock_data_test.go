package pipeline_test

import (
	"fmt"
	"strings"
)

// Builders for synthetic report pages shared by the pipeline tests.

const reportRule = "-----------------------------------------------------------------------------"

func fixedRow(cells ...string) string {
	var b strings.Builder
	for _, c := range cells {
		fmt.Fprintf(&b, "%7s", c)
	}
	return b.String()
}

func soundingBlock(dataRows ...string) string {
	lines := []string{
		"",
		reportRule,
		fixedRow("PRES", "HGHT", "TEMP", "DWPT", "RELH", "MIXR", "DRCT", "SKNT", "THTA", "THTE", "THTV"),
		fixedRow("hPa", "m", "C", "C", "%", "g/kg", "deg", "knot", "K", "K", "K"),
		reportRule,
	}
	lines = append(lines, dataRows...)
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func dataRow(pres, hght, temp, sknt string) string {
	return fixedRow(pres, hght, temp, "", "", "", "", sknt, "", "", "")
}

func reportPage(headers, blocks []string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := range headers {
		fmt.Fprintf(&b, "<h2>%s</h2><pre>%s</pre>", headers[i], blocks[i])
	}
	b.WriteString("</body></html>")
	return b.String()
}

// inversionPage holds one night profile with a ground inversion and one day
// profile with strictly falling temperature.
func inversionPage() string {
	withInversion := soundingBlock(
		dataRow("1000.0", "50", "-5.0", "10"),
		dataRow("990.0", "130", "-3.0", "12"),
		dataRow("975.0", "200", "-1.0", "14"),
	)
	withoutInversion := soundingBlock(
		dataRow("1000.0", "40", "8.0", "8"),
		dataRow("985.0", "150", "6.0", "9"),
		dataRow("970.0", "280", "3.0", "11"),
	)
	return reportPage(
		[]string{
			"16622 Observations at 00Z 15 Jan 2021",
			"16622 Observations at 12Z 15 Jan 2021",
		},
		[]string{withInversion, withoutInversion},
	)
}
