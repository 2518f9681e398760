package replay

import "github.com/wyfcoding/segtree/xerrors"

var (
	// ErrScenarioInvalid 场景文件无法解析或字段组合不合法。
	ErrScenarioInvalid = xerrors.New(xerrors.ErrInvalidArg, 400201, "scenario invalid", "", nil)
	// ErrUnknownPreset 场景引用了不存在的预设。
	ErrUnknownPreset = xerrors.New(xerrors.ErrNotFound, 404201, "unknown preset", "", nil)
	// ErrExpectationMismatch 步骤结果与期望不符。
	ErrExpectationMismatch = xerrors.New(xerrors.ErrInternal, 500201, "expectation mismatch", "", nil)
	// ErrScenarioPanic 场景执行过程中发生 panic。
	ErrScenarioPanic = xerrors.New(xerrors.ErrInternal, 500202, "scenario panicked", "", nil)
)

func invalid(sc *Scenario, format string, args ...any) error {
	return ErrScenarioInvalid.Derive(format, args...).
		WithContext("scenario", sc.Name).
		WithContext("source", sc.Source)
}

func mismatch(step int, op, format string, args ...any) *xerrors.Error {
	return ErrExpectationMismatch.Derive(format, args...).
		WithContext("step", step).
		WithContext("op", op)
}
