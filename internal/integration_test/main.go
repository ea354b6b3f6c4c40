// 指示: miu200521358
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/miu200521358/mu_bonemerge/pkg/adapter/assetstore"
	gltfrepo "github.com/miu200521358/mu_bonemerge/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_bonemerge/pkg/infra/config"
	"github.com/miu200521358/mu_bonemerge/pkg/shared/logging"
	"github.com/miu200521358/mu_bonemerge/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
)

// batchConfig はバッチ統合の実行設定を表す。
type batchConfig struct {
	InputDir   string `arg:"" name:"input-dir" help:"統合対象アバターを含むディレクトリ"`
	Plan       string `short:"c" help:"統合計画TOMLファイル"`
	OutputRoot string `name:"output-root" help:"統合結果の出力ルートディレクトリ"`
	DryRun     bool   `name:"dry-run" help:"実統合せず、入力解決と出力先計画のみ表示する"`
	FailFast   bool   `name:"fail-fast" help:"失敗時に即時終了する"`
}

// mergeEntry は1モデル分の統合入力情報を表す。
type mergeEntry struct {
	Index      int
	SourcePath string
	ModelName  string
	CaseDir    string
	OutputPath string
}

// mergeResult は1モデル分の統合結果を表す。
type mergeResult struct {
	Entry         mergeEntry
	Status        string
	Duration      time.Duration
	Err           error
	Warnings      []string
	MeshCount     int
	CollapseCount int
}

// main はボーン統合の一括実行を行う。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括統合を実行し、終了コードを返す。
func run() int {
	batch, err := parseBatchConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	plan := config.Default()
	if batch.Plan != "" {
		plan, err = config.Load(batch.Plan)
		if err != nil {
			fmt.Fprintf(os.Stderr, "統合計画の読み込みに失敗しました: %v\n", err)
			return 2
		}
	}
	if err := logging.Configure(logging.ProfileRuntime, os.Stderr, plan.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "ログ設定に失敗しました: %v\n", err)
		return 2
	}

	inputPaths, err := collectInputPaths(batch.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "入力ディレクトリの走査に失敗しました: %v\n", err)
		return 2
	}
	entries := buildMergeEntries(batch.OutputRoot, inputPaths)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "統合対象モデルがありません")
		return 2
	}

	results := executeBatchMerge(batch, plan, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig(args []string) (batchConfig, error) {
	batch := batchConfig{}
	parser, err := kong.New(&batch, kong.Name("integration_test"), kong.Description("アバターのボーン統合を一括実行します。"))
	if err != nil {
		return batchConfig{}, err
	}
	if _, err := parser.Parse(args); err != nil {
		return batchConfig{}, err
	}
	if strings.TrimSpace(batch.OutputRoot) == "" {
		defaultOutputRoot, err := resolveDefaultOutputRoot()
		if err != nil {
			return batchConfig{}, err
		}
		batch.OutputRoot = defaultOutputRoot
	}
	batch.InputDir = filepath.Clean(convertWindowsPathToWsl(batch.InputDir))
	batch.OutputRoot = filepath.Clean(strings.TrimSpace(batch.OutputRoot))
	return batch, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "output"), nil
}

// collectInputPaths は入力ディレクトリ直下の対応拡張子ファイルを名前順に返す。
func collectInputPaths(inputDir string) ([]string, error) {
	dirEntries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !minteractor.IsSupportedAvatarPath(dirEntry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(inputDir, dirEntry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// buildMergeEntries は入力パス一覧から統合対象エントリを生成する。
func buildMergeEntries(outputRoot string, inputPaths []string) []mergeEntry {
	entries := make([]mergeEntry, 0, len(inputPaths))
	for i, inputPath := range inputPaths {
		modelName := resolveModelName(inputPath)
		safeModelName := sanitizePathComponent(modelName)
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, safeModelName))
		entries = append(entries, mergeEntry{
			Index:      i + 1,
			SourcePath: inputPath,
			ModelName:  modelName,
			CaseDir:    caseDir,
			OutputPath: minteractor.BuildDefaultOutputPath(filepath.Join(caseDir, safeModelName+filepath.Ext(inputPath))),
		})
	}
	return entries
}

// executeBatchMerge は全モデルの統合処理を順次実行する。
func executeBatchMerge(batch batchConfig, plan *config.Config, entries []mergeEntry) []mergeResult {
	results := make([]mergeResult, 0, len(entries))
	repository := gltfrepo.NewGltfRepository()

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 統合開始: model=%s\n", entry.Index, total, entry.ModelName)
		deps := minteractor.BoneMergeUsecaseDeps{
			AvatarReader:       repository,
			AvatarWriter:       repository,
			AssetStore:         assetstore.NewYamlAssetStore(),
			AssetPathGenerator: assetstore.NewPathGenerator(filepath.Join(entry.CaseDir, "assets")),
		}
		result := mergeModelEntry(minteractor.NewBoneMergeUsecase(deps), batch, plan, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf(
				"[%d/%d] 統合成功: model=%s output=%s meshes=%d bones=%d elapsed=%s\n",
				entry.Index,
				total,
				entry.ModelName,
				entry.OutputPath,
				result.MeshCount,
				result.CollapseCount,
				result.Duration.Round(time.Millisecond),
			)
			if len(result.Warnings) > 0 {
				fmt.Printf("[%d/%d] 警告: %s\n", entry.Index, total, strings.Join(result.Warnings, ", "))
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: model=%s input=%s output=%s\n", entry.Index, total, entry.ModelName, entry.SourcePath, entry.OutputPath)
		default:
			fmt.Printf("[%d/%d] 統合失敗: model=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Err)
			if batch.FailFast {
				return results
			}
		}
	}
	return results
}

// mergeModelEntry は1モデル分の統合を実行する。
func mergeModelEntry(usecase *minteractor.BoneMergeUsecase, batch batchConfig, plan *config.Config, entry mergeEntry) mergeResult {
	result := mergeResult{
		Entry:  entry,
		Status: "failed",
	}
	if batch.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	merged, err := usecase.Merge(minteractor.MergeRequest{
		InputPath:  entry.SourcePath,
		OutputPath: entry.OutputPath,
		Plan: minteractor.MergePlan{
			MergeBones: plan.Merge.Bones,
			VetoBones:  plan.Merge.Veto,
		},
		SaveOptions: minteractor.SaveOptions{Binary: plan.Output.Binary},
	})
	if err != nil {
		result.Err = err
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.Warnings = merged.Warnings
	result.MeshCount = len(merged.Report.RetargetedMeshes)
	result.CollapseCount = len(merged.Report.CollapsedPairs)
	return result
}

// printBatchSummary は統合結果の集計を標準出力へ表示する。
func printBatchSummary(results []mergeResult) {
	succeeded := 0
	failed := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ統合サマリ: total=%d succeeded=%d failed=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		dryRun,
	)
}

// resolveModelName は入力パスから拡張子を除いたモデル名を返す。
func resolveModelName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		return "model"
	}
	return name
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "model"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "model"
	}
	return replaced
}
