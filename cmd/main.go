// 指示: miu200521358
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/miu200521358/mu_bonemerge/pkg/adapter/assetstore"
	gltfrepo "github.com/miu200521358/mu_bonemerge/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_bonemerge/pkg/infra/config"
	"github.com/miu200521358/mu_bonemerge/pkg/shared/logging"
	"github.com/miu200521358/mu_bonemerge/pkg/usecase/minteractor"
)

const appName = "mu_bonemerge"

// errHelpRequested はヘルプ表示で処理を終える場合の内部エラー。
var errHelpRequested = errors.New("help requested")

// options はCLI引数を保持する。
type options struct {
	Config   string   `short:"c" placeholder:"PLAN.toml" help:"統合計画TOMLファイル"`
	Merge    []string `placeholder:"BONE" help:"統合するボーン名 (複数指定可)"`
	Veto     []string `placeholder:"BONE" help:"統合から除外するボーン名 (複数指定可)"`
	Out      string   `placeholder:"PATH" help:"出力ファイルパス (.gltf/.glb/.vrm)"`
	Binary   bool     `help:"バイナリ形式で保存する"`
	AssetDir string   `name:"asset-dir" placeholder:"DIR" help:"再ターゲットしたメッシュ資産の保存先"`
	LogLevel string   `name:"log-level" placeholder:"LEVEL" help:"ログレベル (debug/info/warn/error)"`
	Input    string   `arg:"" name:"input" help:"入力アバターファイル (.gltf/.glb/.vrm)"`
}

// main はアバターのボーン統合を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, out, errOut)
	if errors.Is(err, errHelpRequested) {
		return nil
	}
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := logging.Configure(logging.ProfileRuntime, errOut, cfg.Log.Level); err != nil {
		return err
	}

	repository := gltfrepo.NewGltfRepository()
	deps := minteractor.BoneMergeUsecaseDeps{
		AvatarReader: repository,
		AvatarWriter: repository,
	}
	if cfg.Output.AssetDir != "" {
		deps.AssetStore = assetstore.NewYamlAssetStore()
		deps.AssetPathGenerator = assetstore.NewPathGenerator(cfg.Output.AssetDir)
	}
	usecase := minteractor.NewBoneMergeUsecase(deps)

	fmt.Fprintf(out, "[%s] 読み込み開始: %s\n", appName, opts.Input)
	result, err := usecase.Merge(minteractor.MergeRequest{
		InputPath:  opts.Input,
		OutputPath: cfg.Output.Path,
		Plan: minteractor.MergePlan{
			MergeBones: cfg.Merge.Bones,
			VetoBones:  cfg.Merge.Veto,
		},
		SaveOptions:      minteractor.SaveOptions{Binary: cfg.Output.Binary},
		ProgressReporter: &progressPrinter{out: out},
	})
	if err != nil {
		return fmt.Errorf("ボーン統合に失敗しました: %w", err)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "[%s] 警告: %s\n", appName, warning)
	}
	for _, assetPath := range result.Report.AssetPaths {
		fmt.Fprintf(out, "[%s] メッシュ資産: %s\n", appName, assetPath)
	}
	fmt.Fprintf(
		out,
		"[%s] 統合完了: %s meshes=%d bones=%d\n",
		appName,
		result.OutputPath,
		len(result.Report.RetargetedMeshes),
		len(result.Report.CollapsedPairs),
	)
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, out io.Writer, errOut io.Writer) (options, error) {
	opts := options{}
	exited := false
	parser, err := kong.New(
		&opts,
		kong.Name(appName),
		kong.Description("スキンメッシュを維持したままアバターのボーンを統合します。"),
		kong.Writers(out, errOut),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		return options{}, err
	}
	_, err = parser.Parse(args)
	if exited {
		return options{}, errHelpRequested
	}
	if err != nil {
		return options{}, err
	}
	if strings.TrimSpace(opts.Input) == "" {
		return options{}, fmt.Errorf("入力アバターファイルを指定してください")
	}
	if !minteractor.IsSupportedAvatarPath(opts.Input) {
		return options{}, fmt.Errorf("入力拡張子が .gltf/.glb/.vrm ではありません: %s", opts.Input)
	}
	return opts, nil
}

// loadConfig は統合計画ファイルとCLI引数から設定を構築する。
func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if strings.TrimSpace(opts.Config) != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	err := cfg.Apply(config.Overrides{
		MergeBones: opts.Merge,
		VetoBones:  opts.Veto,
		OutputPath: opts.Out,
		Binary:     opts.Binary,
		AssetDir:   opts.AssetDir,
		LogLevel:   opts.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// progressPrinter は進捗イベントを標準出力へ表示する。
type progressPrinter struct {
	out io.Writer
}

// ReportMergeProgress は進捗を表示する。
func (p *progressPrinter) ReportMergeProgress(event minteractor.MergeProgressEvent) {
	switch event.Type {
	case minteractor.MergeProgressEventTypeBonesRegistered:
		fmt.Fprintf(p.out, "[%s] 統合候補登録: %d\n", appName, event.BoneCount)
	case minteractor.MergeProgressEventTypeMeshesRetargeted:
		fmt.Fprintf(p.out, "[%s] 再ターゲット: meshes=%d collapsed=%d\n", appName, event.MeshCount, event.CollapseCount)
	case minteractor.MergeProgressEventTypeSaved:
		fmt.Fprintf(p.out, "[%s] 保存完了\n", appName)
	}
}
