// 指示: miu200521358
package model

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node はシーングラフ上の1ノード(ボーン)を表す。
// ローカル変換は親基準のTRSで保持し、ワールド変換は祖先の合成で都度算出する。
type Node struct {
	name        string
	parent      *Node
	children    []*Node
	translation mgl64.Vec3
	rotation    mgl64.Quat
	scale       mgl64.Vec3
	active      bool
	avatarRoot  bool
	destroyed   bool
	renderer    *SkinnedMeshRenderer

	// SourceIndex は読込元文書でのnode index。生成ノードは -1。
	SourceIndex int
}

// NewNode は単位変換・有効状態のノードを生成する。
func NewNode(name string) *Node {
	return &Node{
		name:        name,
		translation: mmath.ZeroVec3,
		rotation:    mgl64.QuatIdent(),
		scale:       mmath.OneVec3,
		active:      true,
		SourceIndex: -1,
	}
}

// Name はノード名を返す。
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// SetName はノード名を設定する。
func (n *Node) SetName(name string) {
	n.name = name
}

// Parent は親ノードを返す。
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children は子ノード一覧のスナップショットを返す。
// 返却値を走査しながら親子付け替えを行っても安全。
func (n *Node) Children() []*Node {
	if n == nil || len(n.children) == 0 {
		return nil
	}
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// ChildCount は子ノード数を返す。
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// IsDestroyed はノードが破棄済みか返す。nil は破棄済み扱い。
func (n *Node) IsDestroyed() bool {
	return n == nil || n.destroyed
}

// IsActive はノード自身の有効状態を返す。
func (n *Node) IsActive() bool {
	return n != nil && n.active
}

// SetActive はノード自身の有効状態を設定する。
func (n *Node) SetActive(active bool) {
	n.active = active
}

// IsAvatarRoot はアバタールート印の有無を返す。
func (n *Node) IsAvatarRoot() bool {
	return n != nil && n.avatarRoot
}

// MarkAvatarRoot はアバタールート印を設定する。
func (n *Node) MarkAvatarRoot(isRoot bool) {
	n.avatarRoot = isRoot
}

// LocalTranslation はローカル平行移動を返す。
func (n *Node) LocalTranslation() mgl64.Vec3 {
	return n.translation
}

// LocalRotation はローカル回転を返す。
func (n *Node) LocalRotation() mgl64.Quat {
	return n.rotation
}

// LocalScale はローカル拡縮を返す。
func (n *Node) LocalScale() mgl64.Vec3 {
	return n.scale
}

// SetLocalTranslation はローカル平行移動を設定する。
func (n *Node) SetLocalTranslation(translation mgl64.Vec3) {
	n.translation = translation
}

// SetLocalRotation はローカル回転を正規化して設定する。
func (n *Node) SetLocalRotation(rotation mgl64.Quat) {
	n.rotation = mmath.NormalizedQuat(rotation)
}

// SetLocalScale はローカル拡縮を設定する。
func (n *Node) SetLocalScale(scale mgl64.Vec3) {
	n.scale = scale
}

// SetLocalTRS はローカル変換を一括設定する。
func (n *Node) SetLocalTRS(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) {
	n.SetLocalTranslation(translation)
	n.SetLocalRotation(rotation)
	n.SetLocalScale(scale)
}

// LocalPose はローカル変換の退避値を表す。
type LocalPose struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// LocalPose は現在のローカル変換を返す。
func (n *Node) LocalPose() LocalPose {
	return LocalPose{Translation: n.translation, Rotation: n.rotation, Scale: n.scale}
}

// RestoreLocalPose は退避したローカル変換を正規化せずそのまま戻す。
func (n *Node) RestoreLocalPose(pose LocalPose) {
	n.translation = pose.Translation
	n.rotation = pose.Rotation
	n.scale = pose.Scale
}

// LocalMatrix は親基準のローカル行列を返す。
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return mmath.NewTrsMat4(n.translation, n.rotation, n.scale)
}

// LocalToWorld はローカル座標からワールド座標への行列を返す。
func (n *Node) LocalToWorld() mgl64.Mat4 {
	if n == nil {
		return mgl64.Ident4()
	}
	world := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		world = p.LocalMatrix().Mul4(world)
	}
	return world
}

// WorldToLocal はワールド座標からローカル座標への行列を返す。
func (n *Node) WorldToLocal() mgl64.Mat4 {
	return n.LocalToWorld().Inv()
}

// WorldPosition はワールド位置を返す。
func (n *Node) WorldPosition() r3.Vec {
	world := n.LocalToWorld()
	return r3.Vec{X: world[12], Y: world[13], Z: world[14]}
}

// SetWorldMatrix はワールド行列が指定値となるようローカル変換を設定する。
// 非一様スケール配下のせん断はTRSへ分解できないため、その場合は位置のみ一致する。
func (n *Node) SetWorldMatrix(world mgl64.Mat4) {
	local := world
	if n.parent != nil {
		local = n.parent.WorldToLocal().Mul4(world)
	}
	n.SetLocalTRS(mmath.DecomposeMat4(local))
}

// AddChild は子ノードをローカル変換のまま追加する。
func (n *Node) AddChild(child *Node) error {
	return child.SetParent(n, false)
}

// SetParent は親ノードを付け替える。
// keepWorld が真の場合はワールド変換を維持するようローカル変換を再計算する。
func (n *Node) SetParent(parent *Node, keepWorld bool) error {
	if n.IsDestroyed() {
		return NewDestroyedNode(n.Name())
	}
	if parent != nil && parent.destroyed {
		return NewDestroyedNode(parent.Name())
	}
	for p := parent; p != nil; p = p.parent {
		if p == n {
			return NewReparentCycle(n.Name(), parent.Name())
		}
	}

	world := n.LocalToWorld()
	n.detach()
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	if keepWorld {
		n.SetWorldMatrix(world)
	}
	return nil
}

// Destroy はノードを親から外し、子孫ごと破棄済みにする。
func (n *Node) Destroy() {
	if n.IsDestroyed() {
		return
	}
	n.detach()
	n.markDestroyed()
}

// markDestroyed は子孫を含めて破棄印を付ける。
func (n *Node) markDestroyed() {
	n.destroyed = true
	for _, child := range n.children {
		child.markDestroyed()
	}
}

// detach は現在の親の子一覧から自身を取り除く。
func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, sibling := range siblings {
		if sibling == n {
			n.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Walk は自身を含む子孫を深さ優先の前順で走査する。fn が偽を返すと子孫を辿らない。
func (n *Node) Walk(fn func(node *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// FindByName は自身を含む子孫から名前一致の最初のノードを返す。
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// Path はルートからのスラッシュ区切りパスを返す。
func (n *Node) Path() string {
	if n == nil {
		return ""
	}
	names := []string{}
	for p := n; p != nil; p = p.parent {
		names = append(names, p.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// AttachRenderer はスキンメッシュレンダラーをノードへ取り付ける。
func (n *Node) AttachRenderer(renderer *SkinnedMeshRenderer) {
	if renderer != nil {
		renderer.node = n
	}
	n.renderer = renderer
}

// Renderer は取り付け済みのスキンメッシュレンダラーを返す。
func (n *Node) Renderer() *SkinnedMeshRenderer {
	if n == nil {
		return nil
	}
	return n.renderer
}

// SkinnedMeshRenderers は自身を含む子孫のスキンメッシュレンダラーを返す。
// includeInactive が偽の場合、無効ノード配下は対象外とする。
func (n *Node) SkinnedMeshRenderers(includeInactive bool) []*SkinnedMeshRenderer {
	renderers := []*SkinnedMeshRenderer{}
	n.Walk(func(node *Node) bool {
		if !includeInactive && !node.active {
			return false
		}
		if node.renderer != nil {
			renderers = append(renderers, node.renderer)
		}
		return true
	})
	return renderers
}

// FindAvatarInParents は自身を含む祖先から最も近いアバタールートを返す。
func FindAvatarInParents(node *Node) *Node {
	for p := node; p != nil; p = p.parent {
		if p.avatarRoot {
			return p
		}
	}
	return nil
}
