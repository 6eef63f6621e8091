package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PipelineRow is one line of the pipeline report: the lead plus its badge.
type PipelineRow struct {
	Name          string
	Origin        string
	Status        string
	CreatedAt     time.Time
	LastContactAt *time.Time
	Attention     string
}

// PipelineReportData feeds GeneratePipelineReport.
type PipelineReportData struct {
	GeneratedAt    time.Time
	GeneratedBy    string
	Total          int
	NeedsAttention int
	ByStatus       map[string]int
	Rows           []PipelineRow
}

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GeneratePipelineReport(data PipelineReportData) ([]byte, error)
}

// ReportGenerator renders the pipeline report for download.
type ReportGenerator struct {
	fontName string
}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{fontName: "Helvetica"}
}

func (g *ReportGenerator) GeneratePipelineReport(data PipelineReportData) ([]byte, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle("Lead Pipeline Report", false)
	p.SetAuthor("BrightLend Console", false)
	p.SetMargins(20, 20, 20)
	p.SetAutoPageBreak(true, 20)
	p.AddPage()

	p.SetFont(g.fontName, "B", 18)
	p.CellFormat(0, 10, "LEAD PIPELINE", "", 1, "C", false, 0, "")

	p.SetFont(g.fontName, "", 11)
	sub := fmt.Sprintf("generated %s by %s",
		data.GeneratedAt.Format("02.01.2006 15:04"), data.GeneratedBy)
	p.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(p)
	p.Ln(3)

	g.sectionTitle(p, "Summary")
	g.kvLine(p, "Leads in view", fmt.Sprintf("%d", data.Total))
	g.kvLine(p, "Needs attention", fmt.Sprintf("%d", data.NeedsAttention))
	for status, n := range data.ByStatus {
		g.kvLine(p, status, fmt.Sprintf("%d", n))
	}
	p.Ln(2)
	g.hr(p)

	g.sectionTitle(p, "Leads")
	p.SetFont(g.fontName, "", 10)
	for _, row := range data.Rows {
		last := "never"
		if row.LastContactAt != nil {
			last = row.LastContactAt.Format("02.01.2006")
		}
		badge := ""
		if row.Attention != "" {
			badge = "  [" + row.Attention + "]"
		}
		line := fmt.Sprintf("%s  (%s, %s)  created %s, last contact %s%s",
			row.Name, row.Origin, row.Status,
			row.CreatedAt.Format("02.01.2006"), last, badge)
		p.MultiCell(0, 5.5, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pipeline report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) sectionTitle(p *gofpdf.Fpdf, s string) {
	p.SetFont(g.fontName, "B", 13)
	p.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
	p.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(p *gofpdf.Fpdf, key, val string) {
	p.SetFont(g.fontName, "", 11)
	p.CellFormat(60, 6, key, "", 0, "L", false, 0, "")
	p.SetFont(g.fontName, "B", 11)
	p.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(p *gofpdf.Fpdf) {
	x, y := p.GetXY()
	p.SetDrawColor(180, 180, 180)
	p.Line(20, y, 190, y)
	p.SetXY(x, y+2)
}
