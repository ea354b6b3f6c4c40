// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_bonemerge/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/miu200521358/mu_bonemerge/pkg/usecase/port/moutput"
)

// RetargetReport は1アバター分の再ターゲット・階層統合結果を表す。
type RetargetReport struct {
	RetargetedMeshes []*RetargetedMesh
	AssetPaths       []string
	CollapsedPairs   []BonePair
	Warnings         []string
}

// RetargetMeshes はアバター配下のメッシュ再ターゲットとボーン階層の統合を行う。
type RetargetMeshes struct {
	db            *BoneDatabase
	assetStore    moutput.IAssetStore
	pathGenerator moutput.IAssetPathGenerator
}

// NewRetargetMeshes はRetargetMeshesを生成する。assetStore が nil の場合は資産保存を行わない。
func NewRetargetMeshes(
	db *BoneDatabase,
	assetStore moutput.IAssetStore,
	pathGenerator moutput.IAssetPathGenerator,
) *RetargetMeshes {
	return &RetargetMeshes{
		db:            db,
		assetStore:    assetStore,
		pathGenerator: pathGenerator,
	}
}

// OnPreprocessAvatar はメッシュ再ターゲットを全レンダラーへ適用した後、統合元ボーンの子を統合先へ移して破棄する。
// シーングラフの変更はすべてのメッシュ読み取りが終わった後にのみ行う。
func (rm *RetargetMeshes) OnPreprocessAvatar(avatarRoot *model.Node) (*RetargetReport, error) {
	if avatarRoot == nil {
		return nil, fmt.Errorf("%s", messages.MessageAvatarRootMissing)
	}
	if err := rm.db.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", messages.MessageRegistryInvalid, err)
	}

	report := &RetargetReport{}
	if err := rm.retargetRenderers(avatarRoot, report); err != nil {
		return nil, err
	}
	if err := rm.collapseBones(report); err != nil {
		return nil, err
	}
	return report, nil
}

// retargetRenderers は統合対象ボーンを参照するレンダラーだけを再ターゲットする。
func (rm *RetargetMeshes) retargetRenderers(avatarRoot *model.Node, report *RetargetReport) error {
	for _, renderer := range avatarRoot.SkinnedMeshRenderers(true) {
		if !rm.isRetargetable(renderer) {
			logMergeDebug(messages.LogSkipRenderer, renderer.Name())
			continue
		}

		retargeted, err := NewMeshRetargeter(rm.db, renderer).Retarget()
		if err != nil {
			return fmt.Errorf("%s: renderer=%s: %w", messages.MessageRetargetFailed, renderer.Name(), err)
		}
		report.RetargetedMeshes = append(report.RetargetedMeshes, retargeted)
		report.Warnings = appendUniqueWarnings(report.Warnings, retargeted.Warnings...)

		assetPath, err := rm.createAsset(retargeted.Mesh)
		if err != nil {
			return err
		}
		if assetPath != "" {
			report.AssetPaths = append(report.AssetPaths, assetPath)
		}
	}
	return nil
}

// isRetargetable はレンダラーのボーンに統合先が解決できるものがあるか判定する。
func (rm *RetargetMeshes) isRetargetable(renderer *model.SkinnedMeshRenderer) bool {
	for _, bone := range renderer.Bones {
		if _, ok := rm.db.Resolve(bone); ok {
			return true
		}
	}
	return false
}

// createAsset は資産ストアへ新しいメッシュを保存し、保存パスを返す。
func (rm *RetargetMeshes) createAsset(mesh *model.Mesh) (string, error) {
	if rm.assetStore == nil {
		return "", nil
	}
	assetPath := ""
	if rm.pathGenerator != nil {
		assetPath = rm.pathGenerator.GenerateAssetPath()
	}
	if err := rm.assetStore.CreateAsset(mesh, assetPath); err != nil {
		return "", fmt.Errorf("%s: mesh=%s: %w", messages.MessageAssetCreateFailed, mesh.Name, err)
	}
	logMergeDebug(messages.LogAssetCreated, mesh.Name, assetPath)
	return assetPath, nil
}

// collapseBones は統合元ボーンの子をワールド変換を保ったまま統合先へ移し、統合元を破棄する。
func (rm *RetargetMeshes) collapseBones(report *RetargetReport) error {
	for _, pair := range rm.db.RetargetedBones() {
		if _, ok := rm.db.Resolve(pair.Source); !ok {
			logMergeDebug(messages.LogSkipStalePair, pair.Source.Name())
			continue
		}

		children := pair.Source.Children()
		for _, child := range children {
			if err := child.SetParent(pair.Destination, true); err != nil {
				return fmt.Errorf("%s: %s -> %s: %w", messages.MessageCollapseFailed, pair.Source.Name(), pair.Destination.Name(), err)
			}
		}
		logMergeInfo(messages.LogCollapseBone, pair.Source.Name(), pair.Destination.Name(), len(children))

		pair.Source.Destroy()
		report.CollapsedPairs = append(report.CollapsedPairs, pair)
	}
	return nil
}

// appendUniqueWarnings は重複を除いて警告IDを追加する。
func appendUniqueWarnings(warnings []string, added ...string) []string {
	for _, warning := range added {
		exists := false
		for _, current := range warnings {
			if current == warning {
				exists = true
				break
			}
		}
		if !exists {
			warnings = append(warnings, warning)
		}
	}
	return warnings
}
