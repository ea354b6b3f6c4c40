// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/mmath"
)

// SkinnedMeshRenderer はメッシュとボーン配列の結び付けを表す。
type SkinnedMeshRenderer struct {
	node        *Node
	SharedMesh  *Mesh
	Bones       []*Node
	RootBone    *Node
	ProbeAnchor *Node
}

// NewSkinnedMeshRenderer はレンダラーを生成する。ボーン配列は複製して保持する。
func NewSkinnedMeshRenderer(mesh *Mesh, bones []*Node) *SkinnedMeshRenderer {
	copied := make([]*Node, len(bones))
	copy(copied, bones)
	return &SkinnedMeshRenderer{
		SharedMesh: mesh,
		Bones:      copied,
	}
}

// Node はレンダラーの取り付け先ノードを返す。
func (r *SkinnedMeshRenderer) Node() *Node {
	return r.node
}

// Name はレンダラー名(取り付け先ノード名)を返す。
func (r *SkinnedMeshRenderer) Name() string {
	if r == nil || r.node == nil {
		return ""
	}
	return r.node.Name()
}

// SkinnedVertexWorld は線形ブレンドスキニングで頂点のワールド位置を算出する。
func (r *SkinnedMeshRenderer) SkinnedVertexWorld(vertexIndex int) (mgl64.Vec3, error) {
	mesh := r.SharedMesh
	if mesh == nil {
		return mmath.ZeroVec3, fmt.Errorf("メッシュが未設定です: %s", r.Name())
	}
	if vertexIndex < 0 || vertexIndex >= len(mesh.Vertices) {
		return mmath.ZeroVec3, fmt.Errorf("頂点indexが範囲外です: %d", vertexIndex)
	}
	if len(mesh.BindPoses) != len(r.Bones) {
		return mmath.ZeroVec3, fmt.Errorf(
			"ボーン数とバインドポーズ数が一致しません: bones=%d bindposes=%d",
			len(r.Bones),
			len(mesh.BindPoses),
		)
	}

	vertex := mesh.Vertices[vertexIndex]
	result := mmath.ZeroVec3
	for k := 0; k < BoneInfluenceCount; k++ {
		weight := vertex.Weight.Weights[k]
		if weight == 0 {
			continue
		}
		joint := vertex.Weight.Joints[k]
		if joint < 0 || joint >= len(r.Bones) || r.Bones[joint] == nil {
			return mmath.ZeroVec3, fmt.Errorf("頂点のボーンindexが不正です: vertex=%d joint=%d", vertexIndex, joint)
		}
		skin := r.Bones[joint].LocalToWorld().Mul4(mesh.BindPoses[joint])
		result = result.Add(mmath.TransformPoint(skin, vertex.Position).Mul(weight))
	}
	return result, nil
}
