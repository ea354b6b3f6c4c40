// 指示: miu200521358
package gltf

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/mmath"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	attributePosition = "POSITION"
	attributeJoints   = "JOINTS_0"
	attributeWeights  = "WEIGHTS_0"

	// syntheticRootName は最上位ノードが複数ある場合に生成するルート名。
	syntheticRootName = "AvatarRoot"
)

// buildNodeHierarchy はglTFノード配列からシーングラフを構築し、アバタールートを返す。
func buildNodeHierarchy(doc *gltf.Document) (*model.Node, []*model.Node, error) {
	parents, err := buildNodeParentIndexes(doc.Nodes)
	if err != nil {
		return nil, nil, err
	}
	if err := validateNodeHierarchy(parents); err != nil {
		return nil, nil, err
	}

	nodes := make([]*model.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		node := model.NewNode(resolveNodeName(i, gn.Name))
		node.SourceIndex = i
		applyLocalTransform(node, gn)
		nodes[i] = node
	}
	for parentIndex, gn := range doc.Nodes {
		for _, childIndex := range gn.Children {
			if parents[childIndex] != parentIndex {
				continue
			}
			if err := nodes[parentIndex].AddChild(nodes[childIndex]); err != nil {
				return nil, nil, NewIoParseFailed("ノード階層の構築に失敗しました: %d", err, childIndex)
			}
		}
	}

	roots := resolveRootIndexes(doc, parents)
	if len(roots) == 0 {
		return nil, nil, NewIoParseFailed("最上位ノードがありません", nil)
	}
	var root *model.Node
	if len(roots) == 1 {
		root = nodes[roots[0]]
	} else {
		root = model.NewNode(syntheticRootName)
		for _, index := range roots {
			if err := root.AddChild(nodes[index]); err != nil {
				return nil, nil, NewIoParseFailed("ルートノードの構築に失敗しました: %d", err, index)
			}
		}
	}
	root.MarkAvatarRoot(true)
	return root, nodes, nil
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []*gltf.Node) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		if node == nil {
			return nil, NewIoParseFailed("nodeが空です: %d", nil, parentIndex)
		}
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, NewIoParseFailed("node.children のindexが不正です: %d", nil, childIndex)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// validateNodeHierarchy は親子関係に循環が無いか検証する。
func validateNodeHierarchy(parents []int) error {
	state := make([]int, len(parents))
	for i := range parents {
		if err := visitNodeParent(parents, i, state); err != nil {
			return err
		}
	}
	return nil
}

// visitNodeParent は親方向へ再帰的に辿り、訪問中ノードへの再到達を循環として扱う。
func visitNodeParent(parents []int, nodeIndex int, state []int) error {
	if state[nodeIndex] == 2 {
		return nil
	}
	if state[nodeIndex] == 1 {
		return NewIoParseFailed("node親子関係に循環があります: %d", nil, nodeIndex)
	}
	state[nodeIndex] = 1
	if parentIndex := parents[nodeIndex]; parentIndex >= 0 {
		if err := visitNodeParent(parents, parentIndex, state); err != nil {
			return err
		}
	}
	state[nodeIndex] = 2
	return nil
}

// resolveRootIndexes は既定シーンの最上位ノードを先頭に、親を持たない全ノードを返す。
func resolveRootIndexes(doc *gltf.Document, parents []int) []int {
	roots := make([]int, 0)
	seen := make(map[int]struct{})
	appendRoot := func(index int) {
		if index < 0 || index >= len(parents) || parents[index] >= 0 {
			return
		}
		if _, ok := seen[index]; ok {
			return
		}
		seen[index] = struct{}{}
		roots = append(roots, index)
	}
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		for _, index := range doc.Scenes[*doc.Scene].Nodes {
			appendRoot(index)
		}
	}
	for i := range parents {
		appendRoot(i)
	}
	return roots
}

// resolveNodeName はnode名を決定する。
func resolveNodeName(nodeIndex int, nodeName string) string {
	trimmed := strings.TrimSpace(nodeName)
	if trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("node_%03d", nodeIndex)
}

// applyLocalTransform はnodeの行列またはTRSをローカル変換として設定する。
func applyLocalTransform(node *model.Node, gn *gltf.Node) {
	matrix := mgl64.Mat4(gn.Matrix)
	if matrix != (mgl64.Mat4{}) && !mmath.IsIdentity(matrix, mmath.DefaultEpsilon) {
		translation, rotation, scale := mmath.DecomposeMat4(matrix)
		node.SetLocalTRS(translation, rotation, scale)
		return
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	node.SetLocalTRS(
		mgl64.Vec3{t[0], t[1], t[2]},
		mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}},
		mgl64.Vec3{s[0], s[1], s[2]},
	)
}

// buildRenderer はスキン付きメッシュノードからレンダラーを生成する。
func buildRenderer(doc *gltf.Document, nodes []*model.Node, nodeIndex int) (*model.SkinnedMeshRenderer, error) {
	gn := doc.Nodes[nodeIndex]
	skinIndex := *gn.Skin
	meshIndex := *gn.Mesh
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, NewIoParseFailed("node.skin のindexが不正です: node=%d skin=%d", nil, nodeIndex, skinIndex)
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, NewIoParseFailed("node.mesh のindexが不正です: node=%d mesh=%d", nil, nodeIndex, meshIndex)
	}
	skin := doc.Skins[skinIndex]
	gm := doc.Meshes[meshIndex]

	bones := make([]*model.Node, len(skin.Joints))
	for i, joint := range skin.Joints {
		if joint < 0 || joint >= len(nodes) {
			return nil, NewIoParseFailed("skin.joints のindexが不正です: skin=%d joint=%d", nil, skinIndex, joint)
		}
		bones[i] = nodes[joint]
	}

	mesh := model.NewMesh(resolveMeshName(meshIndex, gm.Name))
	mesh.SourceMeshIndex = meshIndex
	mesh.SourceSkinIndex = skinIndex
	bindPoses, err := readInverseBindMatrices(doc, skin)
	if err != nil {
		return nil, err
	}
	mesh.BindPoses = bindPoses
	vertices, err := readSkinnedVertices(doc, gm)
	if err != nil {
		return nil, err
	}
	mesh.Vertices = vertices
	blendShapes, err := readBlendShapes(doc, gm)
	if err != nil {
		return nil, err
	}
	mesh.BlendShapes = blendShapes

	renderer := model.NewSkinnedMeshRenderer(mesh, bones)
	if skin.Skeleton != nil {
		if *skin.Skeleton < 0 || *skin.Skeleton >= len(nodes) {
			return nil, NewIoParseFailed("skin.skeleton のindexが不正です: %d", nil, *skin.Skeleton)
		}
		renderer.RootBone = nodes[*skin.Skeleton]
	}
	logGltfDebug("レンダラー生成: node=%s mesh=%s bones=%d vertices=%d", nodes[nodeIndex].Name(), mesh.Name, len(bones), len(vertices))
	return renderer, nil
}

// resolveMeshName はmesh名を決定する。
func resolveMeshName(meshIndex int, meshName string) string {
	trimmed := strings.TrimSpace(meshName)
	if trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("mesh_%03d", meshIndex)
}

// readInverseBindMatrices はスキンの逆バインド行列を読み込む。未指定の場合は単位行列とする。
func readInverseBindMatrices(doc *gltf.Document, skin *gltf.Skin) ([]mgl64.Mat4, error) {
	bindPoses := make([]mgl64.Mat4, len(skin.Joints))
	if skin.InverseBindMatrices == nil {
		for i := range bindPoses {
			bindPoses[i] = mgl64.Ident4()
		}
		return bindPoses, nil
	}
	accessorIndex := *skin.InverseBindMatrices
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, NewIoParseFailed("skin.inverseBindMatrices のindexが不正です: %d", nil, accessorIndex)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessorIndex], nil)
	if err != nil {
		return nil, NewIoParseFailed("逆バインド行列の読み込みに失敗しました: accessor=%d", err, accessorIndex)
	}
	matrices, ok := data.([][4][4]float32)
	if !ok {
		return nil, NewIoParseFailed("逆バインド行列の型が不正です: %T", nil, data)
	}
	if len(matrices) != len(skin.Joints) {
		return nil, NewIoParseFailed("逆バインド行列数が不正です: joints=%d matrices=%d", nil, len(skin.Joints), len(matrices))
	}
	for i, m := range matrices {
		bindPoses[i] = mat4FromColumns(m)
	}
	return bindPoses, nil
}

// mat4FromColumns は列優先のaccessor要素を行列へ変換する。
func mat4FromColumns(m [4][4]float32) mgl64.Mat4 {
	var out mgl64.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = float64(m[c][r])
		}
	}
	return out
}

// mat4ToColumns は行列を列優先のaccessor要素へ変換する。
func mat4ToColumns(m mgl64.Mat4) [4][4]float32 {
	var out [4][4]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c][r] = float32(m[c*4+r])
		}
	}
	return out
}

// readSkinnedVertices は全プリミティブの頂点位置とボーンウェイトを連結して読み込む。
func readSkinnedVertices(doc *gltf.Document, gm *gltf.Mesh) ([]model.Vertex, error) {
	vertices := make([]model.Vertex, 0)
	for primitiveIndex, primitive := range gm.Primitives {
		positionIndex, ok := primitive.Attributes[attributePosition]
		if !ok {
			continue
		}
		positionAccessor, err := accessorAt(doc, positionIndex)
		if err != nil {
			return nil, err
		}
		positions, err := modeler.ReadPosition(doc, positionAccessor, nil)
		if err != nil {
			return nil, NewIoParseFailed("頂点位置の読み込みに失敗しました: primitive=%d", err, primitiveIndex)
		}
		var joints [][4]uint16
		if jointsIndex, ok := primitive.Attributes[attributeJoints]; ok {
			jointsAccessor, err := accessorAt(doc, jointsIndex)
			if err != nil {
				return nil, err
			}
			joints, err = modeler.ReadJoints(doc, jointsAccessor, nil)
			if err != nil {
				return nil, NewIoParseFailed("頂点ボーンの読み込みに失敗しました: primitive=%d", err, primitiveIndex)
			}
		}
		var weights [][4]float32
		if weightsIndex, ok := primitive.Attributes[attributeWeights]; ok {
			weightsAccessor, err := accessorAt(doc, weightsIndex)
			if err != nil {
				return nil, err
			}
			weights, err = modeler.ReadWeights(doc, weightsAccessor, nil)
			if err != nil {
				return nil, NewIoParseFailed("頂点ウェイトの読み込みに失敗しました: primitive=%d", err, primitiveIndex)
			}
		}
		if (joints != nil && len(joints) != len(positions)) || (weights != nil && len(weights) != len(positions)) {
			return nil, NewIoParseFailed(
				"頂点属性数が一致しません: primitive=%d positions=%d joints=%d weights=%d",
				nil,
				primitiveIndex,
				len(positions),
				len(joints),
				len(weights),
			)
		}
		for i, position := range positions {
			vertex := model.Vertex{
				Position: mgl64.Vec3{float64(position[0]), float64(position[1]), float64(position[2])},
			}
			if joints != nil && weights != nil {
				for k := 0; k < model.BoneInfluenceCount; k++ {
					vertex.Weight.Joints[k] = int(joints[i][k])
					vertex.Weight.Weights[k] = float64(weights[i][k])
				}
			}
			vertices = append(vertices, vertex)
		}
	}
	return vertices, nil
}

// readBlendShapes はモーフターゲットの名前と位置差分を読み込む。
func readBlendShapes(doc *gltf.Document, gm *gltf.Mesh) ([]model.BlendShape, error) {
	count := 0
	for _, primitive := range gm.Primitives {
		if len(primitive.Targets) > count {
			count = len(primitive.Targets)
		}
	}
	if count == 0 {
		return nil, nil
	}
	names := readTargetNames(gm.Extras)
	shapes := make([]model.BlendShape, count)
	for k := range shapes {
		if k < len(names) && names[k] != "" {
			shapes[k].Name = names[k]
		} else {
			shapes[k].Name = fmt.Sprintf("target_%03d", k)
		}
	}
	for primitiveIndex, primitive := range gm.Primitives {
		positionIndex, ok := primitive.Attributes[attributePosition]
		if !ok {
			continue
		}
		positionAccessor, err := accessorAt(doc, positionIndex)
		if err != nil {
			return nil, err
		}
		vertexCount := positionAccessor.Count
		for k := range shapes {
			deltas := make([]mgl64.Vec3, vertexCount)
			if k < len(primitive.Targets) {
				if deltaIndex, ok := primitive.Targets[k][attributePosition]; ok {
					deltaAccessor, err := accessorAt(doc, deltaIndex)
					if err != nil {
						return nil, err
					}
					values, err := modeler.ReadPosition(doc, deltaAccessor, nil)
					if err != nil {
						return nil, NewIoParseFailed("モーフ差分の読み込みに失敗しました: primitive=%d target=%d", err, primitiveIndex, k)
					}
					for i := 0; i < len(values) && i < vertexCount; i++ {
						deltas[i] = mgl64.Vec3{float64(values[i][0]), float64(values[i][1]), float64(values[i][2])}
					}
				}
			}
			shapes[k].PositionDeltas = append(shapes[k].PositionDeltas, deltas...)
		}
	}
	return shapes, nil
}

// readTargetNames は mesh.extras.targetNames を読み込む。
func readTargetNames(extras any) []string {
	values, ok := extras.(map[string]any)
	if !ok {
		return nil
	}
	rawNames, ok := values["targetNames"].([]any)
	if !ok {
		return nil
	}
	names := make([]string, len(rawNames))
	for i, raw := range rawNames {
		if name, ok := raw.(string); ok {
			names[i] = name
		}
	}
	return names
}

// accessorAt はindexに対応するaccessorを返す。
func accessorAt(doc *gltf.Document, index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, NewIoParseFailed("accessor のindexが不正です: %d", nil, index)
	}
	return doc.Accessors[index], nil
}
