// 指示: miu200521358
package minteractor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
)

const retargetTestTol = 1e-9

// testAvatar はテスト用アバターの主要ノードを保持する。
type testAvatar struct {
	root     *model.Node
	hips     *model.Node
	spine    *model.Node
	chest    *model.Node
	body     *model.Node
	renderer *model.SkinnedMeshRenderer
}

// newTestAvatar は Root -> Hips -> Spine -> Chest の骨格と、[Hips, Spine, Chest] へ結び付いたメッシュを生成する。
func newTestAvatar(t *testing.T) *testAvatar {
	t.Helper()
	a := &testAvatar{
		root:  model.NewNode("Root"),
		hips:  model.NewNode("Hips"),
		spine: model.NewNode("Spine"),
		chest: model.NewNode("Chest"),
		body:  model.NewNode("Body"),
	}
	a.root.MarkAvatarRoot(true)
	for _, link := range [][2]*model.Node{{a.root, a.hips}, {a.hips, a.spine}, {a.spine, a.chest}, {a.root, a.body}} {
		if err := link[0].AddChild(link[1]); err != nil {
			t.Fatalf("add child failed: %v", err)
		}
	}
	a.hips.SetLocalTranslation(mgl64.Vec3{0, 1, 0})
	a.spine.SetLocalTRS(mgl64.Vec3{0, 0.2, 0.02}, mgl64.QuatRotate(math.Pi/12, mgl64.Vec3{1, 0, 0}), mgl64.Vec3{1, 1, 1})
	a.chest.SetLocalTRS(mgl64.Vec3{0, 0.25, 0}, mgl64.QuatRotate(-math.Pi/10, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{1, 1, 1})

	mesh := model.NewMesh("body")
	mesh.BindPoses = []mgl64.Mat4{mgl64.Ident4(), mgl64.Ident4(), mgl64.Ident4()}
	mesh.Vertices = []model.Vertex{
		newTestVertex(mgl64.Vec3{0, 1, 0}, 0, 1, 0.5),
		newTestVertex(mgl64.Vec3{0.1, 1.2, 0}, 1, 2, 0.7),
		newTestVertex(mgl64.Vec3{-0.1, 1.45, 0.05}, 2, 1, 0.9),
		newTestVertex(mgl64.Vec3{0.2, 1.3, -0.1}, 1, 1, 1),
	}
	a.renderer = model.NewSkinnedMeshRenderer(mesh, []*model.Node{a.hips, a.spine, a.chest})
	a.renderer.RootBone = a.hips
	a.renderer.ProbeAnchor = a.spine
	a.body.AttachRenderer(a.renderer)
	return a
}

// newTestVertex は2ボーンへ配分した頂点を生成する。
func newTestVertex(position mgl64.Vec3, first int, second int, firstWeight float64) model.Vertex {
	return model.Vertex{
		Position: position,
		Weight: model.BoneWeight{
			Joints:  [model.BoneInfluenceCount]int{first, second, 0, 0},
			Weights: [model.BoneInfluenceCount]float64{firstWeight, 1 - firstWeight, 0, 0},
		},
	}
}

// skinnedPositions はレンダラーの全頂点のワールド位置を返す。
func skinnedPositions(t *testing.T, renderer *model.SkinnedMeshRenderer) []mgl64.Vec3 {
	t.Helper()
	positions := make([]mgl64.Vec3, len(renderer.SharedMesh.Vertices))
	for i := range positions {
		pos, err := renderer.SkinnedVertexWorld(i)
		if err != nil {
			t.Fatalf("skinning failed: %v", err)
		}
		positions[i] = pos
	}
	return positions
}

// recordingAssetStore は保存要求を記録する資産ストアを表す。
type recordingAssetStore struct {
	meshes []*model.Mesh
	paths  []string
	err    error
}

func (s *recordingAssetStore) CreateAsset(mesh *model.Mesh, assetPath string) error {
	if s.err != nil {
		return s.err
	}
	s.meshes = append(s.meshes, mesh)
	s.paths = append(s.paths, assetPath)
	return nil
}

// sequencePathGenerator は連番の資産パスを返す。
type sequencePathGenerator struct {
	count int
}

func (g *sequencePathGenerator) GenerateAssetPath() string {
	g.count++
	return "Assets/_BoneMerge/" + string(rune('a'+g.count-1)) + ".asset"
}
