// 指示: miu200521358
package minteractor

import (
	"errors"
	"strings"
	"testing"

	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHook は呼び出し順を記録するフックを表す。
type recordingHook struct {
	name  string
	order int
	calls *[]string
	err   error
}

func (h *recordingHook) CallbackOrder() int {
	return h.order
}

func (h *recordingHook) OnPreprocessAvatar(*model.Node) error {
	*h.calls = append(*h.calls, h.name)
	return h.err
}

func TestBuildPipelineRunsHooksInOrder(t *testing.T) {
	calls := []string{}
	pipeline := NewBuildPipeline(
		&recordingHook{name: "retarget", order: HookSequenceRetargetMesh, calls: &calls},
		nil,
		&recordingHook{name: "merge-a", order: HookSequenceMergeArmature, calls: &calls},
		&recordingHook{name: "reset", order: HookSequenceResetters, calls: &calls},
		&recordingHook{name: "merge-b", order: HookSequenceMergeArmature, calls: &calls},
	)

	require.NoError(t, pipeline.Run(model.NewNode("Root")))

	assert.Equal(t, []string{"reset", "merge-a", "merge-b", "retarget"}, calls)
}

func TestBuildPipelineStopsAtFirstError(t *testing.T) {
	calls := []string{}
	hookErr := errors.New("broken")
	pipeline := NewBuildPipeline(
		&recordingHook{name: "first", order: 1, calls: &calls, err: hookErr},
		&recordingHook{name: "second", order: 2, calls: &calls},
	)

	err := pipeline.Run(model.NewNode("Root"))

	require.ErrorIs(t, err, hookErr)
	assert.Equal(t, []string{"first"}, calls)
}

func TestResetHookClearsRegistry(t *testing.T) {
	a := newTestAvatar(t)
	db := NewBoneDatabase()
	db.AddMergedBone(a.spine)

	require.NoError(t, NewResetHook(db).OnPreprocessAvatar(a.root))

	assert.Equal(t, 0, db.Len())
	assert.Equal(t, HookSequenceResetters, NewResetHook(db).CallbackOrder())
}

func TestMergePlanHookRegistersAndVetoes(t *testing.T) {
	a := newTestAvatar(t)
	db := NewBoneDatabase()
	hook := NewMergePlanHook(db, MergePlan{
		MergeBones: []string{"Spine", "Chest", "Missing"},
		VetoBones:  []string{"Spine"},
	})

	require.NoError(t, hook.OnPreprocessAvatar(a.root))

	assert.True(t, db.IsRegistered(a.spine))
	assert.False(t, db.IsRetargetable(a.spine))
	assert.True(t, db.IsRetargetable(a.chest))
	_, ok := db.Resolve(a.chest)
	require.False(t, ok)
	assert.Equal(t, []string{model.WarningMergeBoneNotFound}, hook.Warnings())
}

func TestMergePlanHookRejectsNilRoot(t *testing.T) {
	hook := NewMergePlanHook(NewBoneDatabase(), MergePlan{MergeBones: []string{"Spine"}})

	err := hook.OnPreprocessAvatar(nil)

	if err == nil || !strings.Contains(err.Error(), "アバタールート") {
		t.Fatalf("expected avatar root error: got=%v", err)
	}
}

func TestRetargetHookKeepsReport(t *testing.T) {
	a := newTestAvatar(t)
	db := NewBoneDatabase()
	pipeline := NewBuildPipeline(
		NewRetargetHook(NewRetargetMeshes(db, nil, nil)),
		NewMergePlanHook(db, MergePlan{MergeBones: []string{"Spine"}}),
		NewResetHook(db),
	)

	require.NoError(t, pipeline.Run(a.root))

	hook := pipeline.hooks[2].(*RetargetHook)
	require.NotNil(t, hook.Report())
	assert.Len(t, hook.Report().CollapsedPairs, 1)
}

func TestMergePlanIsEmpty(t *testing.T) {
	assert.True(t, MergePlan{}.IsEmpty())
	assert.False(t, MergePlan{VetoBones: []string{"Hips"}}.IsEmpty())
}
