package replay

import (
	"context"
	"runtime/debug"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/segtree/logging"
	"github.com/wyfcoding/segtree/metrics"
	"github.com/wyfcoding/segtree/tracing"
	"github.com/wyfcoding/segtree/xerrors"
)

// Options 回放参数。
type Options struct {
	Parallelism int  // 同时执行的场景数上限
	FailFast    bool // 任一场景未通过时取消尚未开始的场景
}

// Runner 并发回放场景，每个场景独占一棵树。
type Runner struct {
	opts    Options
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewRunner 创建回放器。logger 为空时使用默认日志，m 为空时不记录指标。
func NewRunner(opts Options, logger *logging.Logger, m *metrics.Metrics) *Runner {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{opts: opts, logger: logger, metrics: m}
}

// Run 执行全部场景并返回报告。
// 报告总是完整的，每个场景对应一条结果；开启 FailFast 且有场景未通过时同时返回
// ErrExpectationMismatch，父 ctx 被取消时返回 ctx.Err()。
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	defer r.logger.LogDuration(ctx, "replay", "scenarios", len(scenarios))()

	start := time.Now()
	report := &Report{Results: make([]Result, len(scenarios))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for i := range scenarios {
		g.Go(func() error {
			res := r.runScenario(gctx, &scenarios[i])
			report.Results[i] = res
			if r.opts.FailFast && res.Status() != StatusPass && res.Status() != StatusSkipped {
				return ErrExpectationMismatch.Derive("scenario %s: %s", res.Name, res.Status()).
					WithContext("scenario", res.Name)
			}
			return nil
		})
	}
	err := g.Wait()
	report.Duration = time.Since(start)

	if err == nil {
		err = ctx.Err()
	}
	return report, err
}

func (r *Runner) runScenario(ctx context.Context, sc *Scenario) (res Result) {
	res = Result{Name: sc.Name, Variant: sc.Variant, Source: sc.Source}
	if err := ctx.Err(); err != nil {
		res.Skipped = true
		res.Err = err
		return res
	}

	ctx, span := tracing.StartSpan(ctx, "replay.scenario")
	tracing.AddTag(ctx, "replay.scenario", sc.Name)
	tracing.AddTag(ctx, "replay.variant", sc.Variant)
	start := time.Now()

	var d driver
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = r.recovered(ctx, sc, rec)
		}
		if d != nil {
			res.Stats = d.stats()
		}
		res.Duration = time.Since(start)
		status := res.Status()

		tracing.AddTag(ctx, "replay.result", status)
		tracing.AddTag(ctx, "replay.steps", res.Steps)
		if cause := res.Cause(); cause != nil {
			tracing.SetError(ctx, cause)
		}
		span.End()

		r.metrics.ObserveStats(sc.Variant, sc.Name, res.Stats)
		r.metrics.ObserveScenario(sc.Variant, status, res.Duration)

		r.logger.InfoContext(ctx, "scenario finished",
			"scenario", sc.Name,
			"variant", sc.Variant,
			"result", status,
			"steps", res.Steps,
			"mismatches", len(res.Mismatches),
			"duration", res.Duration,
		)
	}()

	if err := sc.Validate(); err != nil {
		res.Err = err
		r.logger.WarnContext(ctx, "scenario rejected", "scenario", sc.Name, "source", sc.Source, "error", err, "detail", detailOf(err))
		return res
	}

	d = variants[sc.Variant].open(sc)
	if _, err := d.build(sc.Values); err != nil {
		res.Err = err
		return res
	}

	for i := range sc.Steps {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		st := &sc.Steps[i]
		if m := r.step(ctx, d, i, st, sc.Values); m != nil {
			res.Mismatches = append(res.Mismatches, m)
			r.logger.WarnContext(ctx, "step mismatch",
				"scenario", sc.Name, "step", i, "op", st.Op, "detail", m.Detail)
		}
		res.Steps++
	}
	return res
}

func (r *Runner) step(ctx context.Context, d driver, i int, st *Step, initial []int64) *xerrors.Error {
	r.logger.DebugContext(ctx, "replay step", "step", i, "op", st.Op, "left", st.Left, "right", st.Right, "index", st.Index)

	var (
		got     int64
		gotData []int64
		gotTime int
		err     error
	)
	switch st.Op {
	case OpBuild:
		values := st.Values
		if values == nil {
			values = initial
		}
		gotTime, err = d.build(values)
	case OpApply:
		gotTime, err = d.apply(st)
	case OpQuery:
		got, err = d.query(st)
	case OpGet:
		got, err = d.get(st)
	case OpData:
		gotData, err = d.data(st)
	case OpClear:
		d.clear()
	case OpMaxRight:
		got = int64(d.maxRight(st.Left, *st.Limit))
	case OpMinLeft:
		got = int64(d.minLeft(st.Right, *st.Limit))
	}
	return check(i, st, got, gotData, gotTime, err)
}

// check 比较步骤结果与期望。声明了 expect_error 时只比较错误码。
func check(i int, st *Step, got int64, gotData []int64, gotTime int, err error) *xerrors.Error {
	if st.ExpectError != 0 {
		if code := xerrors.CodeOf(err); code != st.ExpectError {
			return mismatch(i, st.Op, "want error code %d, got %d (%v)", st.ExpectError, code, err).
				WithContext("want", st.ExpectError).
				WithContext("got", code)
		}
		return nil
	}
	if err != nil {
		return mismatch(i, st.Op, "unexpected error: %v", err).
			WithContext("got", xerrors.CodeOf(err))
	}
	if st.Expect != nil && got != *st.Expect {
		return mismatch(i, st.Op, "want %d, got %d", *st.Expect, got).
			WithContext("want", *st.Expect).
			WithContext("got", got)
	}
	if st.ExpectData != nil && !slices.Equal(gotData, st.ExpectData) {
		return mismatch(i, st.Op, "want %v, got %v", st.ExpectData, gotData)
	}
	if st.ExpectTime != nil && gotTime != *st.ExpectTime {
		return mismatch(i, st.Op, "want snapshot %d, got %d", *st.ExpectTime, gotTime).
			WithContext("want", *st.ExpectTime).
			WithContext("got", gotTime)
	}
	return nil
}

func (r *Runner) recovered(ctx context.Context, sc *Scenario, rec any) error {
	var err *xerrors.Error
	if e, ok := rec.(error); ok {
		if _, typed := xerrors.FromError(e); typed {
			err = xerrors.Wrap(e, xerrors.ErrInternal, "scenario panicked")
		} else {
			err = ErrScenarioPanic.Derive("%v", e)
		}
	} else {
		err = ErrScenarioPanic.Derive("%v", rec)
	}
	err.WithContext("scenario", sc.Name)

	r.logger.ErrorContext(ctx, "scenario panic recovered", "scenario", sc.Name, "error", err, "stack", string(debug.Stack()))
	return err
}

func detailOf(err error) string {
	if e, ok := xerrors.FromError(err); ok && e.Detail != "" {
		return e.Detail
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
