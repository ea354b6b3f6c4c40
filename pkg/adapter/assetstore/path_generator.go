// 指示: miu200521358
package assetstore

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultAssetDir は生成メッシュ資産の既定保存先。
const DefaultAssetDir = "Assets/_BoneMergeTemporary"

const assetExt = ".asset"

// PathGenerator は一意な資産パスを生成する。
type PathGenerator struct {
	dir     string
	newUUID func() string
}

// NewPathGenerator はPathGeneratorを生成する。dir が空の場合は既定保存先を使う。
func NewPathGenerator(dir string) *PathGenerator {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		trimmed = DefaultAssetDir
	}
	return &PathGenerator{dir: trimmed, newUUID: uuid.NewString}
}

// Dir は保存先フォルダを返す。
func (g *PathGenerator) Dir() string {
	return g.dir
}

// GenerateAssetPath は `<dir>/<uuid>.asset` 形式のパスを返す。
func (g *PathGenerator) GenerateAssetPath() string {
	return filepath.Join(g.dir, g.newUUID()+assetExt)
}
