package memo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	pageMargin = 20.0
	logoWidth  = 24.0
	lineHeight = 7.0
)

type Config struct {
	Layout      Layout
	LogoLeft    string
	LogoRight   string
	Institution string
	SignerName  string
	SignerTitle string
}

type Renderer interface {
	Render(s Snapshot) ([]byte, error)
}

type renderer struct {
	cfg    Config
	upper  cases.Caser
	logger *zap.Logger
}

func NewRenderer(cfg Config, logger ...*zap.Logger) Renderer {
	l := zap.L().Named("memo.renderer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("memo.renderer")
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutOffice
	}
	return &renderer{cfg: cfg, upper: cases.Upper(language.Spanish), logger: l}
}

// MaxReasonRunes is the longest reason accepted for a request; it still fits
// the page at the smallest scale.
const MaxReasonRunes = 500

// fallbackReasonRunes is what remains of an oversized reason when no scale
// keeps the memo on one page.
const fallbackReasonRunes = 200

var pageScales = []float64{1, 0.9, 0.8, 0.7}

// Render produces a single A4 page, shrinking the type until the content fits.
// Logos are optional and never fail the render.
func (r *renderer) Render(s Snapshot) ([]byte, error) {
	if s.ExpedienteNumber == "" {
		return nil, fmt.Errorf("render memo: expediente number is required")
	}

	for _, scale := range pageScales {
		pdf := r.draw(s, scale)
		if pdf.Err() {
			return nil, fmt.Errorf("render memo %s: %w", s.ExpedienteNumber, pdf.Error())
		}
		if pdf.PageNo() == 1 {
			return output(pdf, s.ExpedienteNumber)
		}
	}

	r.logger.Warn("memo reason truncated to fit one page",
		zap.String("expediente", s.ExpedienteNumber),
		zap.Int("reason_runes", len([]rune(s.Reason))),
	)
	s.Reason = truncateRunes(s.Reason, fallbackReasonRunes)
	pdf := r.draw(s, pageScales[len(pageScales)-1])
	if pdf.Err() {
		return nil, fmt.Errorf("render memo %s: %w", s.ExpedienteNumber, pdf.Error())
	}
	return output(pdf, s.ExpedienteNumber)
}

func (r *renderer) draw(s Snapshot, scale float64) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("Memorándum "+s.ExpedienteNumber, true)
	pdf.SetCreator(r.cfg.Institution, true)
	pdf.AddPage()

	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), scale: scale}

	r.drawLogos(pdf)
	w.header(r.cfg.Institution, s.Date.Year())

	switch r.cfg.Layout {
	case LayoutPlain:
		r.renderPlain(w, s)
	case LayoutLetter:
		r.renderLetter(w, s)
	default:
		r.renderOffice(w, s)
	}

	r.signature(w)
	return pdf
}

func output(pdf *fpdf.Fpdf, expediente string) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render memo %s: %w", expediente, err)
	}
	return buf.Bytes(), nil
}

func truncateRunes(v string, n int) string {
	rs := []rune(strings.TrimSpace(v))
	if len(rs) <= n {
		return string(rs)
	}
	return strings.TrimSpace(string(rs[:n-1])) + "…"
}

func (r *renderer) renderPlain(w *writer, s Snapshot) {
	w.title("CONSTANCIA DE LICENCIA N° " + s.ExpedienteNumber)
	w.rows([][2]string{
		{"Expediente", s.ExpedienteNumber},
		{"Fecha", LongDate(s.Date)},
		{"Servidor(a)", r.upper.String(s.HolderName)},
		{"Cargo", s.Position},
		{"Tipo de licencia", r.upper.String(s.SubjectType)},
		{"Motivo", s.Reason},
		{"Periodo", Period(s.PeriodStart, s.PeriodEnd)},
		{"Condición", s.PayCondition()},
	}, false)
	w.gap()
	w.paragraph(r.body(s))
}

func (r *renderer) renderLetter(w *writer, s Snapshot) {
	w.title("MEMORÁNDUM N° " + s.ExpedienteNumber)
	w.rows([][2]string{
		{"A", r.upper.String(s.HolderName) + " - " + s.Position},
		{"DE", r.signerTitle()},
		{"ASUNTO", "Licencia por " + strings.ToLower(s.SubjectType)},
		{"FECHA", LongDate(s.Date)},
	}, false)
	w.rule()
	w.paragraph("Estimado(a) " + s.HolderName + ":")
	w.gap()
	w.paragraph(r.body(s))
	w.gap()
	w.paragraph("Se le exhorta a reincorporarse a sus labores al término del periodo indicado.")
	w.gap()
	w.paragraph("Atentamente,")
}

func (r *renderer) renderOffice(w *writer, s Snapshot) {
	w.title("MEMORÁNDUM")
	w.subtitle("Expediente " + s.ExpedienteNumber)
	w.rows([][2]string{
		{"Servidor(a)", r.upper.String(s.HolderName)},
		{"Cargo", s.Position},
		{"Asunto", "Licencia por " + strings.ToLower(s.SubjectType)},
		{"Motivo", s.Reason},
		{"Periodo", Period(s.PeriodStart, s.PeriodEnd)},
		{"Días", fmt.Sprintf("%d", Days(s.PeriodStart, s.PeriodEnd))},
		{"Condición", s.PayCondition()},
		{"Fecha", LongDate(s.Date)},
	}, true)
	w.gap()
	w.paragraph(r.body(s))
}

func (r *renderer) body(s Snapshot) string {
	pay := "sin goce de haber"
	if s.PaidLeave {
		pay = "con goce de haber"
	}
	return fmt.Sprintf(
		"Por medio del presente se comunica que, en atención al expediente %s, se concede a %s, %s, "+
			"licencia por %s %s %s, por el motivo siguiente: %s.",
		s.ExpedienteNumber, s.HolderName, s.Position,
		strings.ToLower(s.SubjectType), pay, Period(s.PeriodStart, s.PeriodEnd),
		strings.TrimRight(strings.TrimSpace(s.Reason), "."),
	)
}

func (r *renderer) signature(w *writer) {
	w.ln(30)
	pageW, _ := w.pdf.GetPageSize()
	x := pageW/2 - 35
	y := w.pdf.GetY()
	w.pdf.Line(x, y, x+70, y)
	w.ln(2)
	w.font("B", 10)
	if r.cfg.SignerName != "" {
		w.center(r.cfg.SignerName)
	}
	w.font("", 10)
	w.center(r.signerTitle())
}

func (r *renderer) signerTitle() string {
	if r.cfg.SignerTitle == "" {
		return "Recursos Humanos"
	}
	return r.cfg.SignerTitle
}

func (r *renderer) drawLogos(pdf *fpdf.Fpdf) {
	pageW, _ := pdf.GetPageSize()
	r.drawLogo(pdf, r.cfg.LogoLeft, pageMargin)
	r.drawLogo(pdf, r.cfg.LogoRight, pageW-pageMargin-logoWidth)
}

func (r *renderer) drawLogo(pdf *fpdf.Fpdf, path string, x float64) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		r.logger.Warn("memo logo not available", zap.String("path", path), zap.Error(err))
		return
	}
	imgType := imageType(path)
	if imgType == "" {
		r.logger.Warn("memo logo has unsupported format", zap.String("path", path))
		return
	}

	pdf.ImageOptions(path, x, pageMargin-8, logoWidth, 0, false, fpdf.ImageOptions{ImageType: imgType, ReadDpi: true}, 0, "")
	if pdf.Err() {
		r.logger.Warn("memo logo could not be drawn", zap.String("path", path), zap.Error(pdf.Error()))
		pdf.ClearError()
	}
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return ""
	}
}

// writer wraps fpdf with cp1252 translation so accented text prints with the
// core fonts.
type writer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	scale float64
}

func (w *writer) font(style string, size float64) {
	w.pdf.SetFont("Helvetica", style, size*w.scale)
}

func (w *writer) ln(h float64) {
	w.pdf.Ln(h * w.scale)
}

func (w *writer) header(institution string, year int) {
	w.pdf.SetY(pageMargin + 2)
	w.font("B", 11)
	if institution != "" {
		w.center(institution)
	}
	w.font("I", 8)
	w.center(fmt.Sprintf("\"Año %d\"", year))
	w.ln(10)
}

func (w *writer) title(text string) {
	w.font("B", 14)
	w.center(text)
	w.ln(4)
}

func (w *writer) subtitle(text string) {
	w.font("", 10)
	w.center(text)
	w.ln(4)
}

func (w *writer) center(text string) {
	w.pdf.CellFormat(0, 6*w.scale, w.tr(text), "", 1, "C", false, 0, "")
}

func (w *writer) rows(rows [][2]string, bordered bool) {
	border := ""
	if bordered {
		border = "1"
		w.pdf.SetFillColor(235, 235, 235)
	}
	for _, row := range rows {
		w.font("B", 10)
		w.pdf.CellFormat(45, lineHeight*w.scale, w.tr(row[0]+":"), border, 0, "L", bordered, 0, "")
		w.font("", 10)
		w.pdf.MultiCell(0, lineHeight*w.scale, w.tr(row[1]), border, "L", false)
	}
}

func (w *writer) paragraph(text string) {
	w.font("", 11)
	w.pdf.MultiCell(0, 6*w.scale, w.tr(text), "", "J", false)
}

func (w *writer) rule() {
	pageW, _ := w.pdf.GetPageSize()
	w.ln(2)
	y := w.pdf.GetY()
	w.pdf.Line(pageMargin, y, pageW-pageMargin, y)
	w.ln(4)
}

func (w *writer) gap() {
	w.ln(4)
}
