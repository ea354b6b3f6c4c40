// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
)

// retargetedMeshPrefix は再ターゲット後メッシュ名の接頭辞。
const retargetedMeshPrefix = "RETARGETED: "

// RetargetedMesh は1レンダラー分の再ターゲット結果を表す。
type RetargetedMesh struct {
	Renderer         *model.SkinnedMeshRenderer
	SourceMesh       *model.Mesh
	Mesh             *model.Mesh
	ReboundBoneCount int
	Warnings         []string
}

// MeshRetargeter は統合対象ボーンへ結び付いたメッシュのバインドポーズを、統合先ボーン基準へ置き換える。
// シェイプキーは補正しない。
type MeshRetargeter struct {
	db       *BoneDatabase
	renderer *model.SkinnedMeshRenderer
}

// NewMeshRetargeter はMeshRetargeterを生成する。
func NewMeshRetargeter(db *BoneDatabase, renderer *model.SkinnedMeshRenderer) *MeshRetargeter {
	return &MeshRetargeter{db: db, renderer: renderer}
}

// Retarget はメッシュを複製してバインドポーズとボーン配列を更新し、レンダラーへ反映する。
// 計算中はアバタールートを単位変換へ退避し、終了時に必ず元へ戻す。
func (r *MeshRetargeter) Retarget() (*RetargetedMesh, error) {
	if r.renderer == nil {
		return nil, fmt.Errorf("レンダラーが未設定です")
	}
	avatar := model.FindAvatarInParents(r.renderer.Node())
	if avatar == nil {
		return nil, model.NewAvatarRootNotFound(r.renderer.Name())
	}
	src := r.renderer.SharedMesh
	if src == nil {
		return nil, fmt.Errorf("メッシュが未設定です: renderer=%s", r.renderer.Name())
	}
	if len(src.BindPoses) != len(r.renderer.Bones) {
		return nil, fmt.Errorf(
			"%s: renderer=%s bones=%d bindposes=%d",
			messages.MessageBindPoseLenMismatch,
			r.renderer.Name(),
			len(r.renderer.Bones),
			len(src.BindPoses),
		)
	}

	var result *RetargetedMesh
	err := withIdentityAvatarRoot(avatar, func() error {
		dst, err := src.Clone()
		if err != nil {
			return err
		}
		dst.Name = retargetedMeshPrefix + src.Name
		dst.DerivedFrom = src.Name

		rebound := r.retargetBones(src, dst)
		warnings := r.adjustShapeKeys(dst)
		result = &RetargetedMesh{
			Renderer:         r.renderer,
			SourceMesh:       src,
			Mesh:             dst,
			ReboundBoneCount: rebound,
			Warnings:         warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logMergeInfo(messages.LogRetargetMesh, r.renderer.Name(), result.Mesh.Name, result.ReboundBoneCount)
	return result, nil
}

// retargetBones は統合先が解決できたボーンのバインドポーズを再計算し、レンダラーの参照を更新する。
func (r *MeshRetargeter) retargetBones(src *model.Mesh, dst *model.Mesh) int {
	originalBones := r.renderer.Bones
	newBones := make([]*model.Node, len(originalBones))
	copy(newBones, originalBones)

	rebound := 0
	for i, bone := range originalBones {
		target, ok := r.db.Resolve(bone)
		if !ok {
			continue
		}
		dst.BindPoses[i] = RetargetBindPose(target, bone, src.BindPoses[i])
		newBones[i] = target
		rebound++
		logMergeDebug("バインドポーズ再計算: index=%d %s -> %s", i, bone.Name(), target.Name())
	}

	r.renderer.Bones = newBones
	r.renderer.SharedMesh = dst
	r.renderer.RootBone, _ = r.db.ResolveWithFallback(r.renderer.RootBone, true)
	r.renderer.ProbeAnchor, _ = r.db.ResolveWithFallback(r.renderer.ProbeAnchor, true)
	return rebound
}

// adjustShapeKeys はシェイプキーを補正しない。シェイプキーがある場合は警告IDを返す。
func (r *MeshRetargeter) adjustShapeKeys(dst *model.Mesh) []string {
	if !dst.HasBlendShapes() {
		return nil
	}
	logMergeWarn(messages.LogShapeKeysNotAdjusted, dst.Name, len(dst.BlendShapes))
	return []string{model.WarningShapeKeysNotAdjusted}
}

// RetargetBindPose は統合元ボーン基準のバインドポーズを統合先ボーン基準へ変換する。
// newBind = WorldToLocal(dest) * LocalToWorld(source) * oldBind
func RetargetBindPose(dest *model.Node, source *model.Node, oldBind mgl64.Mat4) mgl64.Mat4 {
	return dest.WorldToLocal().Mul4(source.LocalToWorld()).Mul4(oldBind)
}

// withIdentityAvatarRoot はアバタールートのワールド変換を単位変換にして fn を実行する。
// 退避したローカル変換は fn の成否や panic に関わらず復元する。
func withIdentityAvatarRoot(avatarRoot *model.Node, fn func() error) error {
	saved := avatarRoot.LocalPose()
	defer avatarRoot.RestoreLocalPose(saved)

	avatarRoot.SetWorldMatrix(mgl64.Ident4())
	return fn()
}
