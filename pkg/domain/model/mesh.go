// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tiendc/go-deepcopy"
)

// BoneInfluenceCount は1頂点あたりのボーン影響数。
const BoneInfluenceCount = 4

// BoneWeight は頂点のボーンindexとウェイトを表す。
type BoneWeight struct {
	Joints  [BoneInfluenceCount]int
	Weights [BoneInfluenceCount]float64
}

// Vertex はメッシュ空間の頂点を表す。
type Vertex struct {
	Position mgl64.Vec3
	Weight   BoneWeight
}

// BlendShape はシェイプキー(モーフターゲット)を表す。
type BlendShape struct {
	Name           string
	PositionDeltas []mgl64.Vec3
}

// Mesh はスキンメッシュ資産を表す。
// BindPoses はボーン配列と同じ長さ・同じ並びで、メッシュ空間からボーンローカル空間への行列を保持する。
type Mesh struct {
	Name            string
	SourceMeshIndex int
	SourceSkinIndex int
	DerivedFrom     string
	Vertices        []Vertex
	BindPoses       []mgl64.Mat4
	BlendShapes     []BlendShape
}

// NewMesh は読込元indexを持たないメッシュを生成する。
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		SourceMeshIndex: -1,
		SourceSkinIndex: -1,
	}
}

// Clone は形状・トポロジーを含めて別実体のメッシュを複製する。
func (m *Mesh) Clone() (*Mesh, error) {
	if m == nil {
		return nil, fmt.Errorf("複製元メッシュが未設定です")
	}
	dst := Mesh{}
	if err := deepcopy.Copy(&dst, *m); err != nil {
		return nil, fmt.Errorf("メッシュ複製に失敗しました: %s: %w", m.Name, err)
	}
	return &dst, nil
}

// IsDerived は再ターゲットで派生したメッシュか返す。
func (m *Mesh) IsDerived() bool {
	return m != nil && m.DerivedFrom != ""
}

// HasBlendShapes はシェイプキーを持つか返す。
func (m *Mesh) HasBlendShapes() bool {
	return m != nil && len(m.BlendShapes) > 0
}
