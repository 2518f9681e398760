package replay

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wyfcoding/segtree/algorithm/segtree"
	"github.com/wyfcoding/segtree/metrics"
)

// 场景结果
const (
	StatusPass    = metrics.ResultPass
	StatusFail    = metrics.ResultFail
	StatusError   = metrics.ResultError
	StatusSkipped = metrics.ResultSkipped
)

// Result 单个场景的执行结果。
type Result struct {
	Name       string
	Variant    string
	Source     string
	Steps      int     // 已执行的步骤数
	Mismatches []error // 每个不符合期望的步骤一条
	Err        error   // 场景级错误：校验失败、panic 或被取消
	Skipped    bool
	Duration   time.Duration
	Stats      segtree.Stats
}

// Status 返回 pass / fail / error / skipped 之一。
func (r Result) Status() string {
	switch {
	case r.Skipped:
		return StatusSkipped
	case r.Err != nil:
		return StatusError
	case len(r.Mismatches) > 0:
		return StatusFail
	default:
		return StatusPass
	}
}

// Cause 返回导致场景未通过的第一个错误。
func (r Result) Cause() error {
	if r.Err != nil {
		return r.Err
	}
	if len(r.Mismatches) > 0 {
		return r.Mismatches[0]
	}
	return nil
}

// Report 一次回放的汇总。
type Report struct {
	Results  []Result
	Duration time.Duration
}

// Count 返回给定结果的场景数。
func (r *Report) Count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status() == status {
			n++
		}
	}
	return n
}

// OK 所有场景都通过时为真。
func (r *Report) OK() bool {
	return r.Count(StatusPass) == len(r.Results)
}

// Render 以表格形式输出报告。
func (r *Report) Render(w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Scenario", "Variant", "Steps", "Result", "Detail", "Duration"})

	for _, res := range r.Results {
		tbl.AppendRow(table.Row{
			res.Name,
			res.Variant,
			res.Steps,
			res.Status(),
			detailOf(res.Cause()),
			res.Duration.Round(time.Microsecond),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d", len(r.Results)),
		"",
		"",
		fmt.Sprintf("%d passed, %d failed, %d errors", r.Count(StatusPass), r.Count(StatusFail), r.Count(StatusError)),
		"",
		r.Duration.Round(time.Microsecond),
	})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
