// 指示: miu200521358
package minteractor

import (
	"fmt"
	"sort"

	"github.com/miu200521358/mu_bonemerge/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
)

// ビルドフックの呼び出し順。小さい値から順に呼ばれる。
const (
	HookSequenceResetters     = -10000
	HookSequenceMergeArmature = -5000
	HookSequenceRetargetMesh  = -4000
)

// IAvatarHook はアバタービルド時に順序付きで呼ばれるフックの契約を表す。
type IAvatarHook interface {
	// CallbackOrder は呼び出し順を返す。
	CallbackOrder() int
	// OnPreprocessAvatar はアバタールートを受け取り処理する。
	OnPreprocessAvatar(avatarRoot *model.Node) error
}

// MergePlan は統合候補として登録・除外するボーン名を表す。
type MergePlan struct {
	MergeBones []string
	VetoBones  []string
}

// IsEmpty は登録対象が無いか返す。
func (p MergePlan) IsEmpty() bool {
	return len(p.MergeBones) == 0 && len(p.VetoBones) == 0
}

// ResetHook はビルドパス開始時に登録表を初期化する。
type ResetHook struct {
	db *BoneDatabase
}

// NewResetHook はResetHookを生成する。
func NewResetHook(db *BoneDatabase) *ResetHook {
	return &ResetHook{db: db}
}

// CallbackOrder は呼び出し順を返す。
func (h *ResetHook) CallbackOrder() int {
	return HookSequenceResetters
}

// OnPreprocessAvatar は登録表を初期化する。
func (h *ResetHook) OnPreprocessAvatar(*model.Node) error {
	h.db.Reset()
	return nil
}

// MergePlanHook は統合計画に従ってボーンを統合候補へ登録する。
type MergePlanHook struct {
	db       *BoneDatabase
	plan     MergePlan
	warnings []string
}

// NewMergePlanHook はMergePlanHookを生成する。
func NewMergePlanHook(db *BoneDatabase, plan MergePlan) *MergePlanHook {
	return &MergePlanHook{db: db, plan: plan}
}

// CallbackOrder は呼び出し順を返す。
func (h *MergePlanHook) CallbackOrder() int {
	return HookSequenceMergeArmature
}

// OnPreprocessAvatar は名前でボーンを探して登録し、その後除外指定を反映する。
// 見つからない名前は警告として記録する。
func (h *MergePlanHook) OnPreprocessAvatar(avatarRoot *model.Node) error {
	if avatarRoot == nil {
		return fmt.Errorf("%s", messages.MessageAvatarRootMissing)
	}
	for _, name := range h.plan.MergeBones {
		bone := avatarRoot.FindByName(name)
		if bone == nil {
			h.warnMissing(name)
			continue
		}
		h.db.AddMergedBone(bone)
		logMergeDebug(messages.LogRegisterMergeBone, bone.Path())
	}
	for _, name := range h.plan.VetoBones {
		bone := avatarRoot.FindByName(name)
		if bone == nil {
			h.warnMissing(name)
			continue
		}
		h.db.MarkNonRetargetable(bone)
		logMergeDebug(messages.LogVetoMergeBone, bone.Path())
	}
	return nil
}

// Warnings は登録時の警告IDを返す。
func (h *MergePlanHook) Warnings() []string {
	return h.warnings
}

// warnMissing は未検出ボーンの警告を記録する。
func (h *MergePlanHook) warnMissing(name string) {
	logMergeWarn(messages.LogMergeBoneNotFound, name)
	h.warnings = appendUniqueWarnings(h.warnings, model.WarningMergeBoneNotFound)
}

// RetargetHook は登録完了後にメッシュ再ターゲットと階層統合を行う。
type RetargetHook struct {
	retargeter *RetargetMeshes
	report     *RetargetReport
}

// NewRetargetHook はRetargetHookを生成する。
func NewRetargetHook(retargeter *RetargetMeshes) *RetargetHook {
	return &RetargetHook{retargeter: retargeter}
}

// CallbackOrder は呼び出し順を返す。
func (h *RetargetHook) CallbackOrder() int {
	return HookSequenceRetargetMesh
}

// OnPreprocessAvatar はRetargetMeshesを実行する。
func (h *RetargetHook) OnPreprocessAvatar(avatarRoot *model.Node) error {
	report, err := h.retargeter.OnPreprocessAvatar(avatarRoot)
	if err != nil {
		return err
	}
	h.report = report
	return nil
}

// Report は直近の実行結果を返す。
func (h *RetargetHook) Report() *RetargetReport {
	return h.report
}

// BuildPipeline はフックを呼び出し順に実行する。
type BuildPipeline struct {
	hooks []IAvatarHook
}

// NewBuildPipeline はBuildPipelineを生成する。
func NewBuildPipeline(hooks ...IAvatarHook) *BuildPipeline {
	sorted := make([]IAvatarHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			sorted = append(sorted, hook)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CallbackOrder() < sorted[j].CallbackOrder()
	})
	return &BuildPipeline{hooks: sorted}
}

// Run は全フックを順に実行し、最初のエラーで中断する。
func (p *BuildPipeline) Run(avatarRoot *model.Node) error {
	for _, hook := range p.hooks {
		logMergeDebug(messages.LogHookStart, hook, hook.CallbackOrder())
		if err := hook.OnPreprocessAvatar(avatarRoot); err != nil {
			return fmt.Errorf("%s: %T: %w", messages.MessageMergeFailed, hook, err)
		}
	}
	return nil
}
