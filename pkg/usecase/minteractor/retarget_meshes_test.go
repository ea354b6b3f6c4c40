// 指示: miu200521358
package minteractor

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetargetMeshesCollapsesMergedBone(t *testing.T) {
	a := newTestAvatar(t)
	chestWorld := a.chest.LocalToWorld()
	before := skinnedPositions(t, a.renderer)
	store := &recordingAssetStore{}
	db := NewBoneDatabase()
	db.AddMergedBone(a.spine)

	report, err := NewRetargetMeshes(db, store, &sequencePathGenerator{}).OnPreprocessAvatar(a.root)
	if err != nil {
		t.Fatalf("retarget meshes failed: %v", err)
	}

	if !a.spine.IsDestroyed() {
		t.Fatalf("spine should be destroyed")
	}
	if a.chest.Parent() != a.hips {
		t.Fatalf("chest parent mismatch: got=%v want=Hips", a.chest.Parent())
	}
	if a.root.FindByName("Spine") != nil {
		t.Fatalf("spine should not be reachable")
	}
	assertMat4InDelta(t, chestWorld, a.chest.LocalToWorld())

	wantBones := []*model.Node{a.hips, a.hips, a.chest}
	for i, bone := range a.renderer.Bones {
		if bone != wantBones[i] {
			t.Fatalf("bone mismatch: index=%d got=%s want=%s", i, bone.Name(), wantBones[i].Name())
		}
	}
	after := skinnedPositions(t, a.renderer)
	for i := range before {
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, before[i][axis], after[i][axis], retargetTestTol)
		}
	}

	require.Len(t, report.RetargetedMeshes, 1)
	require.Len(t, report.CollapsedPairs, 1)
	assert.Same(t, a.spine, report.CollapsedPairs[0].Source)
	assert.Same(t, a.hips, report.CollapsedPairs[0].Destination)
	assert.Equal(t, []string{"Assets/_BoneMerge/a.asset"}, report.AssetPaths)
	require.Len(t, store.meshes, 1)
	assert.Same(t, a.renderer.SharedMesh, store.meshes[0])
}

func TestRetargetMeshesLeavesUnrelatedRendererUntouched(t *testing.T) {
	a := newTestAvatar(t)
	tail := model.NewNode("Tail")
	require.NoError(t, a.root.AddChild(tail))
	db := NewBoneDatabase()
	db.AddMergedBone(tail)
	original := a.renderer.SharedMesh
	originalBones := append([]*model.Node(nil), a.renderer.Bones...)
	store := &recordingAssetStore{}

	report, err := NewRetargetMeshes(db, store, &sequencePathGenerator{}).OnPreprocessAvatar(a.root)
	require.NoError(t, err)

	assert.Same(t, original, a.renderer.SharedMesh)
	assert.Equal(t, originalBones, a.renderer.Bones)
	assert.Empty(t, report.RetargetedMeshes)
	assert.Empty(t, store.meshes)
	assert.True(t, tail.IsDestroyed())
}

func TestRetargetMeshesIncludesInactiveRenderer(t *testing.T) {
	a := newTestAvatar(t)
	a.body.SetActive(false)
	db := NewBoneDatabase()
	db.AddMergedBone(a.spine)

	report, err := NewRetargetMeshes(db, nil, nil).OnPreprocessAvatar(a.root)
	require.NoError(t, err)

	require.Len(t, report.RetargetedMeshes, 1)
	assert.Empty(t, report.AssetPaths)
	assert.Same(t, a.hips, a.renderer.Bones[1])
}

func TestRetargetMeshesReparentPreservesWorldOfAllChildren(t *testing.T) {
	a := newTestAvatar(t)
	extra := model.NewNode("SpineAccessory")
	require.NoError(t, a.spine.AddChild(extra))
	extra.SetLocalTRS(mgl64.Vec3{0.1, 0.05, 0.2}, mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{0.5, 0.5, 0.5})
	a.hips.SetLocalScale(mgl64.Vec3{1.2, 1.2, 1.2})
	chestWorld := a.chest.LocalToWorld()
	extraWorld := extra.LocalToWorld()
	db := NewBoneDatabase()
	db.AddMergedBone(a.spine)

	_, err := NewRetargetMeshes(db, nil, nil).OnPreprocessAvatar(a.root)
	require.NoError(t, err)

	assert.Equal(t, []*model.Node{a.chest, extra}, a.hips.Children())
	assertMat4InDelta(t, chestWorld, a.chest.LocalToWorld())
	assertMat4InDelta(t, extraWorld, extra.LocalToWorld())
}

func TestRetargetMeshesCollapsesChainInRegistrationOrder(t *testing.T) {
	a := newTestAvatar(t)
	db := NewBoneDatabase()
	db.AddMergedBone(a.chest)
	db.AddMergedBone(a.spine)
	before := skinnedPositions(t, a.renderer)

	report, err := NewRetargetMeshes(db, nil, nil).OnPreprocessAvatar(a.root)
	require.NoError(t, err)

	require.Len(t, report.CollapsedPairs, 2)
	assert.Same(t, a.chest, report.CollapsedPairs[0].Source)
	assert.Same(t, a.hips, report.CollapsedPairs[0].Destination)
	assert.Same(t, a.spine, report.CollapsedPairs[1].Source)
	for _, bone := range a.renderer.Bones {
		assert.Same(t, a.hips, bone)
	}
	assert.True(t, a.chest.IsDestroyed())
	assert.True(t, a.spine.IsDestroyed())
	assert.Equal(t, 0, a.hips.ChildCount())

	after := skinnedPositions(t, a.renderer)
	for i := range before {
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, before[i][axis], after[i][axis], retargetTestTol)
		}
	}
}

func TestRetargetMeshesFailsWithoutAvatarRootBeforeMutation(t *testing.T) {
	a := newTestAvatar(t)
	a.root.MarkAvatarRoot(false)
	db := NewBoneDatabase()
	db.AddMergedBone(a.spine)

	_, err := NewRetargetMeshes(db, nil, nil).OnPreprocessAvatar(a.root)

	if !errors.Is(err, model.ErrAvatarRootNotFound) {
		t.Fatalf("expected avatar root error: got=%v", err)
	}
	if a.spine.IsDestroyed() {
		t.Fatalf("spine should survive failed pass")
	}
	if a.chest.Parent() != a.spine {
		t.Fatalf("hierarchy should not change on failure")
	}
}

func TestRetargetMeshesPropagatesAssetStoreError(t *testing.T) {
	a := newTestAvatar(t)
	db := NewBoneDatabase()
	db.AddMergedBone(a.spine)
	storeErr := errors.New("disk full")

	_, err := NewRetargetMeshes(db, &recordingAssetStore{err: storeErr}, &sequencePathGenerator{}).OnPreprocessAvatar(a.root)

	require.ErrorIs(t, err, storeErr)
	assert.False(t, a.spine.IsDestroyed())
}

func TestAppendUniqueWarnings(t *testing.T) {
	got := appendUniqueWarnings([]string{"a"}, "b", "a", "b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
