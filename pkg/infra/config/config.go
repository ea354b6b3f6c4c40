// 指示: miu200521358
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/miu200521358/mu_bonemerge/pkg/shared/logging"
)

// ErrInvalidConfig は設定内容が不正な場合のエラー。
var ErrInvalidConfig = errors.New("設定内容が不正です")

// Config はボーン統合計画ファイルの内容を表す。
type Config struct {
	Merge  MergeConfig  `toml:"merge"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// MergeConfig は統合候補として登録・除外するボーン名を表す。
type MergeConfig struct {
	Bones []string `toml:"bones"`
	Veto  []string `toml:"veto"`
}

// OutputConfig は保存先の設定を表す。
type OutputConfig struct {
	Path     string `toml:"path"`
	Binary   bool   `toml:"binary"`
	AssetDir string `toml:"asset_dir"`
}

// LogConfig はログ出力の設定を表す。
type LogConfig struct {
	Level string `toml:"level"`
}

// Overrides はコマンドライン引数による上書き値を表す。
type Overrides struct {
	MergeBones []string
	VetoBones  []string
	OutputPath string
	Binary     bool
	AssetDir   string
	LogLevel   string
}

// Default は既定値の設定を返す。
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
	}
}

// Load はTOML形式の統合計画ファイルを読み込む。未知のキーはエラーとする。
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("統合計画ファイルの解析に失敗しました: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("%w: 未対応のキーがあります: %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply はコマンドライン引数の値を設定へ反映する。ボーン名は追加、その他は空でない場合のみ上書きする。
func (c *Config) Apply(overrides Overrides) error {
	c.Merge.Bones = append(c.Merge.Bones, overrides.MergeBones...)
	c.Merge.Veto = append(c.Merge.Veto, overrides.VetoBones...)
	if strings.TrimSpace(overrides.OutputPath) != "" {
		c.Output.Path = overrides.OutputPath
	}
	if overrides.Binary {
		c.Output.Binary = true
	}
	if strings.TrimSpace(overrides.AssetDir) != "" {
		c.Output.AssetDir = overrides.AssetDir
	}
	if strings.TrimSpace(overrides.LogLevel) != "" {
		c.Log.Level = overrides.LogLevel
	}
	c.normalize()
	return c.Validate()
}

// Validate は設定内容を検証する。
func (c *Config) Validate() error {
	for _, name := range c.Merge.Bones {
		if name == "" {
			return fmt.Errorf("%w: merge.bones に空のボーン名があります", ErrInvalidConfig)
		}
	}
	for _, name := range c.Merge.Veto {
		if name == "" {
			return fmt.Errorf("%w: merge.veto に空のボーン名があります", ErrInvalidConfig)
		}
	}
	if !logging.IsValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level が不正です: %s", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// normalize は前後の空白を除去し、重複するボーン名を取り除く。
func (c *Config) normalize() {
	c.Merge.Bones = uniqueNames(c.Merge.Bones)
	c.Merge.Veto = uniqueNames(c.Merge.Veto)
	c.Output.Path = strings.TrimSpace(c.Output.Path)
	c.Output.AssetDir = strings.TrimSpace(c.Output.AssetDir)
	c.Log.Level = strings.TrimSpace(c.Log.Level)
}

// uniqueNames は出現順を保って重複を除去する。
func uniqueNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
