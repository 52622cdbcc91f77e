package bench

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/samber/lo"
)

// ErrUnknownFormat is returned for an unsupported table format.
var ErrUnknownFormat = errors.New("bench: unknown table format")

// Format is a table style.
type Format string

// Supported table formats.
const (
	FormatSimple   Format = "simple"
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
	FormatRounded  Format = "rounded"
	FormatASCII    Format = "ascii"
)

// Formats lists the supported table formats.
func Formats() []Format {
	return []Format{FormatSimple, FormatPlain, FormatMarkdown, FormatRounded, FormatASCII}
}

// ParseFormat validates a table format name.
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	if !lo.Contains(Formats(), f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Headers returns the column names of t.
func (t Table) Headers() []string {
	headers := []string{"Dataset", "Annotator"}
	if t.Thresholded {
		headers = append(headers, "Attr", "Threshold")
	}
	return append(headers, "Total", "TP", "TN", "FP", "FN", "μP", "μR", "μF1", "P", "R", "F1")
}

// Cells returns the rendered cells of every row, floats with three
// decimals.
func (t Table) Cells() [][]string {
	return lo.Map(t.Rows, func(row Row, _ int) []string {
		m := row.Metrics
		cells := []string{row.Dataset, row.Annotator}
		if t.Thresholded {
			cells = append(cells, row.Attr, formatFloat(row.Threshold))
		}
		cells = append(cells,
			strconv.Itoa(m.Total()),
			strconv.Itoa(m.TP),
			strconv.Itoa(m.TN),
			strconv.Itoa(m.FP),
			strconv.Itoa(m.FN),
		)
		return append(cells, lo.Map([]float64{
			m.Precision(), m.Recall(), m.F1(),
			m.MacroPrecision(), m.MacroRecall(), m.MacroF1(),
		}, func(v float64, _ int) string { return formatFloat(v) })...)
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Render writes t in the given format, preceded by a line naming the
// experiment and its matching policy.
func Render(w io.Writer, t Table, format Format) error {
	textColumns := 2
	if t.Thresholded {
		textColumns = 3
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Headers(t.Headers()...).
		Rows(t.Cells()...).
		Wrap(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row != table.HeaderRow && col >= textColumns {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})

	switch format {
	case FormatPlain:
		tbl.Border(lipgloss.HiddenBorder()).
			BorderTop(false).BorderBottom(false).
			BorderLeft(false).BorderRight(false).
			BorderColumn(false).BorderHeader(false)
	case FormatMarkdown:
		tbl.Border(lipgloss.MarkdownBorder()).BorderTop(false).BorderBottom(false)
	case FormatRounded:
		tbl.Border(lipgloss.RoundedBorder())
	case FormatASCII:
		tbl.Border(lipgloss.ASCIIBorder())
	default:
		tbl.Border(lipgloss.Border{Top: "-"}).
			BorderTop(false).BorderBottom(false).
			BorderLeft(false).BorderRight(false).
			BorderColumn(false)
	}

	if _, err := fmt.Fprintf(w, "%s (%s)\n%s\n\n", t.Experiment, t.Policy, tbl.Render()); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}
