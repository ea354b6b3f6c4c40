// 指示: miu200521358
package minteractor

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAvatarReader はテスト用の読み込みリポジトリを表す。
type stubAvatarReader struct {
	avatar *model.Avatar
	err    error
	loaded []string
}

func (r *stubAvatarReader) CanLoad(path string) bool {
	return IsSupportedAvatarPath(path)
}

func (r *stubAvatarReader) Load(path string) (*model.Avatar, error) {
	r.loaded = append(r.loaded, path)
	if r.err != nil {
		return nil, r.err
	}
	r.avatar.Path = path
	return r.avatar, nil
}

// stubAvatarWriter はテスト用の保存リポジトリを表す。
type stubAvatarWriter struct {
	paths   []string
	avatars []*model.Avatar
	options []SaveOptions
	err     error
}

func (w *stubAvatarWriter) Save(path string, avatar *model.Avatar, opts SaveOptions) error {
	if w.err != nil {
		return w.err
	}
	w.paths = append(w.paths, path)
	w.avatars = append(w.avatars, avatar)
	w.options = append(w.options, opts)
	return nil
}

// progressRecorder は進捗イベントを記録する。
type progressRecorder struct {
	events []MergeProgressEvent
}

func (r *progressRecorder) ReportMergeProgress(event MergeProgressEvent) {
	r.events = append(r.events, event)
}

func newStubAvatar(t *testing.T) (*testAvatar, *model.Avatar) {
	t.Helper()
	a := newTestAvatar(t)
	return a, &model.Avatar{Name: "sample", Root: a.root}
}

func TestMergeLoadsMergesAndSaves(t *testing.T) {
	a, avatar := newStubAvatar(t)
	reader := &stubAvatarReader{avatar: avatar}
	writer := &stubAvatarWriter{}
	store := &recordingAssetStore{}
	progress := &progressRecorder{}
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{
		AvatarReader:       reader,
		AvatarWriter:       writer,
		AssetStore:         store,
		AssetPathGenerator: &sequencePathGenerator{},
	})
	inputPath := filepath.Join("models", "sample.vrm")

	result, err := uc.Merge(MergeRequest{
		InputPath:        inputPath,
		Plan:             MergePlan{MergeBones: []string{"Spine"}},
		SaveOptions:      SaveOptions{Binary: true},
		ProgressReporter: progress,
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	wantOutput := filepath.Join("models", "sample_merged.vrm")
	if result.OutputPath != wantOutput {
		t.Fatalf("output path mismatch: got=%s want=%s", result.OutputPath, wantOutput)
	}
	require.Equal(t, []string{wantOutput}, writer.paths)
	assert.Same(t, avatar, writer.avatars[0])
	assert.True(t, writer.options[0].Binary)
	assert.True(t, a.spine.IsDestroyed())
	assert.Same(t, a.hips, a.chest.Parent())
	assert.Len(t, store.meshes, 1)
	assert.Empty(t, result.Warnings)

	gotTypes := make([]MergeProgressEventType, 0, len(progress.events))
	for _, event := range progress.events {
		gotTypes = append(gotTypes, event.Type)
	}
	assert.Equal(t, []MergeProgressEventType{
		MergeProgressEventTypeInputValidated,
		MergeProgressEventTypeOutputPathResolved,
		MergeProgressEventTypeAvatarLoaded,
		MergeProgressEventTypeBonesRegistered,
		MergeProgressEventTypeMeshesRetargeted,
		MergeProgressEventTypeSaved,
	}, gotTypes)
	assert.Equal(t, 1, progress.events[3].BoneCount)
	assert.Equal(t, 1, progress.events[4].MeshCount)
	assert.Equal(t, 1, progress.events[4].CollapseCount)
}

func TestPrepareMergeUsesPreloadedAvatar(t *testing.T) {
	a, avatar := newStubAvatar(t)
	avatar.Path = filepath.Join("in", "preloaded.glb")
	a.renderer.SharedMesh.BlendShapes = []model.BlendShape{{Name: "blink"}}
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{})

	result, err := uc.PrepareMerge(MergeRequest{
		Avatar: avatar,
		Plan:   MergePlan{MergeBones: []string{"Spine", "Tail"}},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("in", "preloaded_merged.glb"), result.OutputPath)
	assert.Equal(t, []string{model.WarningMergeBoneNotFound, model.WarningShapeKeysNotAdjusted}, result.Warnings)
	assert.Empty(t, result.Report.AssetPaths)
}

func TestPrepareMergeRequiresInput(t *testing.T) {
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{})

	_, err := uc.PrepareMerge(MergeRequest{})

	if err == nil || !strings.Contains(err.Error(), "入力") {
		t.Fatalf("expected input error: got=%v", err)
	}
}

func TestPrepareMergeRejectsUnsupportedOutput(t *testing.T) {
	_, avatar := newStubAvatar(t)
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{AvatarReader: &stubAvatarReader{avatar: avatar}})

	_, err := uc.PrepareMerge(MergeRequest{InputPath: "sample.vrm", OutputPath: "sample.pmx"})

	if err == nil || !strings.Contains(err.Error(), "出力拡張子") {
		t.Fatalf("expected output ext error: got=%v", err)
	}
}

func TestPrepareMergeRejectsUnsupportedInput(t *testing.T) {
	_, avatar := newStubAvatar(t)
	reader := &stubAvatarReader{avatar: avatar}
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{AvatarReader: reader})

	_, err := uc.PrepareMerge(MergeRequest{InputPath: "sample.fbx", OutputPath: "out.glb"})

	if err == nil || !strings.Contains(err.Error(), "入力拡張子") {
		t.Fatalf("expected input ext error: got=%v", err)
	}
	assert.Empty(t, reader.loaded)
}

func TestPrepareMergePropagatesLoadError(t *testing.T) {
	loadErr := errors.New("broken file")
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{AvatarReader: &stubAvatarReader{err: loadErr}})

	_, err := uc.PrepareMerge(MergeRequest{InputPath: "sample.vrm"})

	require.ErrorIs(t, err, loadErr)
}

func TestPrepareMergeFailsWithoutAvatarRootMarker(t *testing.T) {
	a, avatar := newStubAvatar(t)
	a.root.MarkAvatarRoot(false)
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{})

	_, err := uc.PrepareMerge(MergeRequest{
		Avatar:     avatar,
		OutputPath: "out.vrm",
		Plan:       MergePlan{MergeBones: []string{"Spine"}},
	})

	require.ErrorIs(t, err, model.ErrAvatarRootNotFound)
	assert.False(t, a.spine.IsDestroyed())
}

func TestMergeRequiresWriter(t *testing.T) {
	_, avatar := newStubAvatar(t)
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{})

	_, err := uc.Merge(MergeRequest{Avatar: avatar, OutputPath: "out.vrm"})

	if err == nil || !strings.Contains(err.Error(), "保存リポジトリ") {
		t.Fatalf("expected writer error: got=%v", err)
	}
}

func TestMergeWrapsSaveError(t *testing.T) {
	_, avatar := newStubAvatar(t)
	saveErr := errors.New("permission denied")
	uc := NewBoneMergeUsecase(BoneMergeUsecaseDeps{AvatarWriter: &stubAvatarWriter{err: saveErr}})

	_, err := uc.Merge(MergeRequest{Avatar: avatar, OutputPath: "out.vrm"})

	require.ErrorIs(t, err, saveErr)
}
