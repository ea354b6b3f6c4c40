// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_bonemerge/pkg/adapter/mpresenter/messages"
)

const defaultOutputSuffix = "_merged"

// supportedAvatarExts は入出力対象の拡張子を保持する。
var supportedAvatarExts = map[string]struct{}{
	".gltf": {},
	".glb":  {},
	".vrm":  {},
}

// BuildDefaultOutputPath は入力パスから既定の出力パスを生成する。
func BuildDefaultOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSpace(strings.TrimSuffix(filepath.Base(inputPath), ext))
	if base == "" || base == "." {
		return ""
	}
	return filepath.Join(dir, base+defaultOutputSuffix+ext)
}

// IsSupportedAvatarPath は拡張子が入出力対象か判定する。
func IsSupportedAvatarPath(path string) bool {
	_, ok := supportedAvatarExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// resolveOutputPath は保存先パスを解決し、拡張子を検証する。
func resolveOutputPath(inputPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(inputPath)
	}
	if resolved == "" {
		return "", fmt.Errorf("保存先パスが未指定です")
	}
	if !IsSupportedAvatarPath(resolved) {
		return "", fmt.Errorf("%s: %s", messages.MessageOutputExtInvalid, resolved)
	}
	return resolved, nil
}
