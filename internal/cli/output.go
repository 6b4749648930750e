package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/cvpromote/internal/orchestrator"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// PrintReport выводит итог run.
//
// Для dry-run — план (что будет опубликовано и куда продвинуто),
// иначе — обработанные content views.
func (o *Output) PrintReport(report *orchestrator.Report) {
	if report == nil {
		return
	}

	if report.DryRun {
		headers := []string{"CONTENT_VIEW", "ID", "ORGANIZATION", "TARGETS"}
		rows := make([][]string, len(report.Plans))
		for i, p := range report.Plans {
			rows[i] = []string{
				p.View.Name,
				strconv.Itoa(p.View.ID),
				strconv.Itoa(p.View.OrganizationID),
				joinOrDash(p.TargetNames()),
			}
		}
		o.Print(headers, rows, report)
		return
	}

	headers := []string{"CONTENT_VIEW", "ID", "VERSION", "PROMOTED", "SKIPPED", "POLLS"}
	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		rows[i] = []string{
			r.Name,
			strconv.Itoa(r.ContentViewID),
			strconv.Itoa(r.VersionID),
			joinOrDash(r.Promoted),
			joinOrDash(r.Skipped),
			strconv.Itoa(r.PollQueries),
		}
	}
	o.Print(headers, rows, report)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
