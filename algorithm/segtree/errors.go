package segtree

import "github.com/wyfcoding/segtree/xerrors"

var (
	// ErrEmptyData 输入数据为空。
	ErrEmptyData = xerrors.New(xerrors.ErrInvalidArg, 400001, "empty data", "input data must not be empty", nil)
	// ErrIndexOutOfRange 单点访问越界。
	ErrIndexOutOfRange = xerrors.New(xerrors.ErrOutOfRange, 400101, "index out of range", "index must be in [0, n)", nil)
	// ErrSizeMismatch 构建数组长度与构造时的 n 不一致。
	ErrSizeMismatch = xerrors.New(xerrors.ErrInvalidArg, 400102, "size mismatch", "length of values must equal the size passed to the constructor", nil)
	// ErrSnapshotNotFound 快照号不存在或已被 ClearSnapshots 清除。
	ErrSnapshotNotFound = xerrors.New(xerrors.ErrNotFound, 404101, "snapshot not found", "snapshot id was never registered or has been cleared", nil)
	// ErrBeatsLeafFailure mapping 在叶子节点返回失败，作用族对数据不成立。
	ErrBeatsLeafFailure = xerrors.New(xerrors.ErrInternal, 500101, "beats mapping failed at leaf", "a leaf must accept every tag it receives", nil)
)

func indexError(index, n int) error {
	return ErrIndexOutOfRange.Derive("index %d not in [0, %d)", index, n).
		WithContext("index", index).
		WithContext("size", n)
}

func sizeError(got, want int) error {
	return ErrSizeMismatch.Derive("got %d values, tree size is %d", got, want).
		WithContext("got", got).
		WithContext("size", want)
}

func snapshotError(time, count int) error {
	return ErrSnapshotNotFound.Derive("snapshot %d not in [0, %d)", time, count).
		WithContext("time", time)
}
