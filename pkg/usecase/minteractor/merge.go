// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_bonemerge/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/miu200521358/mu_bonemerge/pkg/usecase/port/moutput"
)

// LoadAvatar はアバターを読み込む。
func (uc *BoneMergeUsecase) LoadAvatar(rep moutput.IAvatarReader, path string) (*model.Avatar, error) {
	repo := rep
	if repo == nil {
		repo = uc.avatarReader
	}
	if repo == nil {
		return nil, fmt.Errorf("%s", messages.MessageReaderMissing)
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("%s: %s", messages.MessageInputExtInvalid, path)
	}
	avatar, err := repo.Load(path)
	if err != nil {
		return nil, err
	}
	logMergeInfo(messages.LogLoadSuccess, path)
	return avatar, nil
}

// SaveAvatar はアバターを保存する。
func (uc *BoneMergeUsecase) SaveAvatar(rep moutput.IAvatarWriter, path string, avatar *model.Avatar, opts SaveOptions) error {
	writer := rep
	if writer == nil {
		writer = uc.avatarWriter
	}
	if writer == nil {
		return fmt.Errorf("%s", messages.MessageWriterMissing)
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if avatar == nil {
		return fmt.Errorf("保存対象アバターが未設定です")
	}
	if err := writer.Save(path, avatar, opts); err != nil {
		return fmt.Errorf("%s: %w", messages.MessageSaveFailed, err)
	}
	logMergeInfo(messages.LogSaveSuccess, path)
	return nil
}

// PrepareMerge はアバターを読み込み、ボーン統合を適用する。保存は行わない。
func (uc *BoneMergeUsecase) PrepareMerge(request MergeRequest) (*MergeResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.Avatar == nil {
		return nil, fmt.Errorf("%s", messages.MessageInputRequired)
	}
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeInputValidated,
	})

	inputPath := request.InputPath
	if strings.TrimSpace(inputPath) == "" && request.Avatar != nil {
		inputPath = request.Avatar.Path
	}
	outputPath, err := resolveOutputPath(inputPath, request.OutputPath)
	if err != nil {
		return nil, err
	}
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeOutputPathResolved,
	})

	avatar, err := uc.resolveAvatar(request.Reader, request.InputPath, request.Avatar)
	if err != nil {
		return nil, err
	}
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeAvatarLoaded,
	})

	db := NewBoneDatabase()
	planHook := NewMergePlanHook(db, request.Plan)
	retargetHook := NewRetargetHook(NewRetargetMeshes(db, uc.assetStore, uc.assetPathGenerator))
	pipeline := NewBuildPipeline(
		NewResetHook(db),
		planHook,
		&progressHook{
			order:    HookSequenceMergeArmature + 1,
			reporter: request.ProgressReporter,
			event: func() MergeProgressEvent {
				return MergeProgressEvent{Type: MergeProgressEventTypeBonesRegistered, BoneCount: db.Len()}
			},
		},
		retargetHook,
	)
	if err := pipeline.Run(avatar.Root); err != nil {
		return nil, err
	}

	report := retargetHook.Report()
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type:          MergeProgressEventTypeMeshesRetargeted,
		MeshCount:     len(report.RetargetedMeshes),
		CollapseCount: len(report.CollapsedPairs),
	})

	warnings := appendUniqueWarnings(nil, planHook.Warnings()...)
	warnings = appendUniqueWarnings(warnings, report.Warnings...)
	return &MergeResult{
		Avatar:     avatar,
		OutputPath: outputPath,
		Report:     report,
		Warnings:   warnings,
	}, nil
}

// Merge はアバターへボーン統合を適用して保存する。
func (uc *BoneMergeUsecase) Merge(request MergeRequest) (*MergeResult, error) {
	result, err := uc.PrepareMerge(request)
	if err != nil {
		return nil, err
	}
	if err := uc.SaveAvatar(request.Writer, result.OutputPath, result.Avatar, request.SaveOptions); err != nil {
		return nil, err
	}
	reportMergeProgress(request.ProgressReporter, MergeProgressEvent{
		Type: MergeProgressEventTypeSaved,
	})
	return result, nil
}

// resolveAvatar は処理対象アバターを解決し、ルートノードを検証する。
func (uc *BoneMergeUsecase) resolveAvatar(rep moutput.IAvatarReader, inputPath string, avatar *model.Avatar) (*model.Avatar, error) {
	resolved := avatar
	if resolved == nil {
		loaded, err := uc.LoadAvatar(rep, inputPath)
		if err != nil {
			return nil, err
		}
		resolved = loaded
	}
	if resolved == nil {
		return nil, fmt.Errorf("%s", messages.MessageAvatarMissing)
	}
	if resolved.Root == nil {
		return nil, fmt.Errorf("%s", messages.MessageAvatarRootMissing)
	}
	return resolved, nil
}

// progressHook は指定順で進捗イベントを通知するフックを表す。
type progressHook struct {
	order    int
	reporter IMergeProgressReporter
	event    func() MergeProgressEvent
}

// CallbackOrder は呼び出し順を返す。
func (h *progressHook) CallbackOrder() int {
	return h.order
}

// OnPreprocessAvatar は進捗を通知する。
func (h *progressHook) OnPreprocessAvatar(*model.Node) error {
	reportMergeProgress(h.reporter, h.event())
	return nil
}
