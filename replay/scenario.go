// Package replay 从 YAML 场景文件回放线段树操作并校验结果.
//
// 一个场景描述一棵树 (变体 + 预设 + 初值) 与一串步骤，每个步骤可以声明期望值、
// 期望数组或期望错误码。场景之间并发执行，场景内部严格串行。
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wyfcoding/segtree/xerrors"
)

// 变体名称
const (
	VariantLazy            = "lazy"
	VariantPersistent      = "persistent"
	VariantBeats           = "beats"
	VariantPoint           = "point"
	VariantPersistentPoint = "persistent_point"
)

// 步骤操作
const (
	OpBuild    = "build"
	OpApply    = "apply"
	OpQuery    = "query"
	OpGet      = "get"
	OpData     = "data"
	OpClear    = "clear"
	OpMaxRight = "max_right"
	OpMinLeft  = "min_left"
)

// Scenario 一个回放场景.
type Scenario struct {
	Name    string  `yaml:"name"`
	Variant string  `yaml:"variant"`
	Preset  string  `yaml:"preset"`
	Values  []int64 `yaml:"values"`
	Steps   []Step  `yaml:"steps"`

	Source string `yaml:"-"` // 来源文件，仅用于日志
}

// Step 场景中的一步。指针字段为空表示未声明。
type Step struct {
	Op     string    `yaml:"op"`
	Left   int       `yaml:"left"`
	Right  int       `yaml:"right"`
	Index  int       `yaml:"index"`
	Time   *int      `yaml:"time"` // 持久化变体的源快照，为空时取最新快照
	Tag    *int64    `yaml:"tag"`
	Beats  *BeatsTag `yaml:"beats"`
	Limit  *int64    `yaml:"limit"` // max_right / min_left 的谓词上界: 聚合值 <= limit
	Values []int64   `yaml:"values"`

	Expect      *int64  `yaml:"expect"`
	ExpectData  []int64 `yaml:"expect_data"`
	ExpectTime  *int    `yaml:"expect_time"`
	ExpectError int     `yaml:"expect_error"`
}

// BeatsTag Beats 变体的单步标签。
type BeatsTag struct {
	Kind  string `yaml:"kind"` // chmin | chmax | add
	Value int64  `yaml:"value"`
}

// Parse 解析一个 YAML 流，支持以 --- 分隔的多个场景。未知字段视为错误。
func Parse(r io.Reader, source string) ([]Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []Scenario
	for {
		var sc Scenario
		err := dec.Decode(&sc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrScenarioInvalid.Derive("decode %s: %v", source, err).
				WithContext("source", source)
		}
		sc.Source = source
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("%s#%d", filepath.Base(source), len(out))
		}
		out = append(out, sc)
	}
	return out, nil
}

// LoadFiles 读取场景文件。目录会展开为其中的 *.yaml 与 *.yml 文件。
func LoadFiles(paths ...string) ([]Scenario, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	var out []Scenario
	for _, path := range files {
		scenarios, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, scenarios...)
	}
	return out, nil
}

func loadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "open scenario file").WithContext("source", path)
	}
	defer f.Close()
	return Parse(f, path)
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "stat scenario path").WithContext("source", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "read scenario dir").WithContext("source", p)
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Validate 在执行前检查变体、预设与每个步骤的字段组合。
func (sc *Scenario) Validate() error {
	v, ok := variants[sc.Variant]
	if !ok {
		return invalid(sc, "unknown variant %q", sc.Variant)
	}
	if err := v.checkPreset(sc.Preset); err != nil {
		return err
	}
	if len(sc.Values) == 0 {
		return invalid(sc, "values must not be empty")
	}

	for i := range sc.Steps {
		st := &sc.Steps[i]
		if !slices.Contains(v.ops, st.Op) {
			return invalid(sc, "step %d: op %q not supported by variant %s", i, st.Op, sc.Variant)
		}
		if err := st.validate(sc, i); err != nil {
			return err
		}
	}
	return nil
}

func (st *Step) validate(sc *Scenario, i int) error {
	switch st.Op {
	case OpApply:
		if sc.Variant == VariantBeats {
			if st.Beats == nil {
				return invalid(sc, "step %d: beats apply needs a beats tag", i)
			}
			switch st.Beats.Kind {
			case "chmin", "chmax", "add":
			default:
				return invalid(sc, "step %d: unknown beats kind %q", i, st.Beats.Kind)
			}
		} else if st.Tag == nil {
			return invalid(sc, "step %d: apply needs a tag", i)
		}
	case OpMaxRight, OpMinLeft:
		if st.Limit == nil {
			return invalid(sc, "step %d: %s needs a limit", i, st.Op)
		}
	}
	if st.Expect != nil && st.ExpectData != nil {
		return invalid(sc, "step %d: expect and expect_data are exclusive", i)
	}
	return nil
}
