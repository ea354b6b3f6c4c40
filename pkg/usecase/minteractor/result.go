// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_bonemerge/pkg/domain/bonedb"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/miu200521358/mu_bonemerge/pkg/usecase/port/moutput"
)

// BoneDatabase はシーンノードを対象とした統合候補登録表を表す。
type BoneDatabase = bonedb.Database[*model.Node]

// BonePair は統合元ボーンと統合先ボーンの組を表す。
type BonePair = bonedb.BonePair[*model.Node]

// SaveOptions は保存時オプションを表す。
type SaveOptions = moutput.SaveOptions

// NewBoneDatabase は1ビルドパス分の登録表を生成する。
func NewBoneDatabase() *BoneDatabase {
	return bonedb.NewDatabase[*model.Node]()
}

// MergeProgressEventType はボーン統合処理の進捗イベント種別を表す。
type MergeProgressEventType string

const (
	// MergeProgressEventTypeInputValidated は入力検証完了イベントを表す。
	MergeProgressEventTypeInputValidated MergeProgressEventType = "input_validated"
	// MergeProgressEventTypeOutputPathResolved は出力パス解決完了イベントを表す。
	MergeProgressEventTypeOutputPathResolved MergeProgressEventType = "output_path_resolved"
	// MergeProgressEventTypeAvatarLoaded はアバター読込完了イベントを表す。
	MergeProgressEventTypeAvatarLoaded MergeProgressEventType = "avatar_loaded"
	// MergeProgressEventTypeBonesRegistered は統合候補登録完了イベントを表す。
	MergeProgressEventTypeBonesRegistered MergeProgressEventType = "bones_registered"
	// MergeProgressEventTypeMeshesRetargeted はメッシュ再ターゲット完了イベントを表す。
	MergeProgressEventTypeMeshesRetargeted MergeProgressEventType = "meshes_retargeted"
	// MergeProgressEventTypeSaved は保存完了イベントを表す。
	MergeProgressEventTypeSaved MergeProgressEventType = "saved"
)

// MergeProgressEvent はボーン統合処理の進捗イベントを表す。
type MergeProgressEvent struct {
	Type          MergeProgressEventType
	BoneCount     int
	MeshCount     int
	CollapseCount int
}

// IMergeProgressReporter はボーン統合処理の進捗通知契約を表す。
type IMergeProgressReporter interface {
	// ReportMergeProgress は進捗を通知する。
	ReportMergeProgress(event MergeProgressEvent)
}

// MergeRequest はボーン統合要求を表す。
type MergeRequest struct {
	InputPath        string
	OutputPath       string
	Avatar           *model.Avatar
	Plan             MergePlan
	Reader           moutput.IAvatarReader
	Writer           moutput.IAvatarWriter
	SaveOptions      SaveOptions
	ProgressReporter IMergeProgressReporter
}

// MergeResult はボーン統合結果を表す。
type MergeResult struct {
	Avatar     *model.Avatar
	OutputPath string
	Report     *RetargetReport
	Warnings   []string
}

// reportMergeProgress は進捗を通知する。
func reportMergeProgress(reporter IMergeProgressReporter, event MergeProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportMergeProgress(event)
}
