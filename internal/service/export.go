package service

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Felurile de linii recunoscute in textul exportat.
type lineKind int

const (
	lineBlank lineKind = iota
	lineHeading
	lineBullet
	lineParagraph
)

// classifyLine incadreaza o linie si intoarce textul fara marcaj: prefixul de
// diez devine heading, marcajele de lista devin buleti, restul paragrafe.
func classifyLine(line string) (lineKind, string) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return lineBlank, ""
	case strings.HasPrefix(line, "#"):
		return lineHeading, strings.TrimSpace(strings.TrimLeft(line, "#"))
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return lineBullet, line[2:]
	default:
		return lineParagraph, line
	}
}

// BuildPDF transforma textul curatat intr-un document: headingurile apar
// ingrosate la 14pt, bulettii indentati, restul paragrafe simple.
func BuildPDF(displayText string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(displayText, "\n") {
		kind, text := classifyLine(line)
		switch kind {
		case lineBlank:
			pdf.Ln(3)
		case lineHeading:
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, 8, tr(text), "", "L", false)
			pdf.Ln(1)
		case lineBullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr("  - "+text), "", "L", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(text), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
