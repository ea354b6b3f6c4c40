// 指示: miu200521358
package gltf

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/miu200521358/mu_bonemerge/pkg/usecase/port/moutput"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Save はアバターの現在のノード階層とスキンを読込元文書へ反映して保存する。
// .gltf 以外の拡張子は常にバイナリ形式で保存する。
func (r *GltfRepository) Save(path string, avatar *model.Avatar, opts moutput.SaveOptions) error {
	if avatar == nil || avatar.Root == nil {
		return NewIoSaveFailed("保存対象アバターが未設定です", nil)
	}
	src, ok := avatar.Source.(*gltf.Document)
	if !ok || src == nil {
		return NewIoSaveFailed("保存元のglTF文書がありません: %s", nil, avatar.Name)
	}
	doc, err := buildOutputDocument(src, avatar.Root)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewIoSaveFailed("保存先フォルダの作成に失敗しました: %s", err, dir)
		}
	}
	binary := opts.Binary || !strings.EqualFold(filepath.Ext(path), ".gltf")
	if binary {
		err = gltf.SaveBinary(doc, path)
	} else {
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return NewIoSaveFailed("glTF文書の書き込みに失敗しました: %s", err, path)
	}
	logGltfInfo("glTF保存完了: file=%s nodes=%d skins=%d binary=%t", filepath.Base(path), len(doc.Nodes), len(doc.Skins), binary)
	return nil
}

// buildOutputDocument は読込元文書を複製し、残存ノードのみでノード・スキン・シーン・アニメーションを再構成する。
func buildOutputDocument(src *gltf.Document, root *model.Node) (*gltf.Document, error) {
	survivors := collectSurvivingNodes(root)
	sourceToOutput := make(map[int]int, len(survivors))
	nodeToOutput := make(map[*model.Node]int, len(survivors))
	for i, node := range survivors {
		sourceToOutput[node.SourceIndex] = i
		nodeToOutput[node] = i
	}

	doc := *src
	doc.Accessors = append([]*gltf.Accessor(nil), src.Accessors...)
	doc.BufferViews = append([]*gltf.BufferView(nil), src.BufferViews...)
	doc.Buffers = make([]*gltf.Buffer, len(src.Buffers))
	for i, buffer := range src.Buffers {
		copied := *buffer
		copied.Data = append([]byte(nil), buffer.Data...)
		doc.Buffers[i] = &copied
	}

	doc.Nodes = make([]*gltf.Node, len(survivors))
	for i, node := range survivors {
		gn := *src.Nodes[node.SourceIndex]
		t := node.LocalTranslation()
		q := node.LocalRotation()
		s := node.LocalScale()
		gn.Matrix = [16]float64{}
		gn.Translation = [3]float64{t[0], t[1], t[2]}
		gn.Rotation = [4]float64{q.V[0], q.V[1], q.V[2], q.W}
		gn.Scale = [3]float64{s[0], s[1], s[2]}
		gn.Children = nil
		gn.Skin = nil
		for _, child := range node.Children() {
			if childIndex, ok := nodeToOutput[child]; ok {
				gn.Children = append(gn.Children, childIndex)
			}
		}
		doc.Nodes[i] = &gn
	}

	doc.Skins = nil
	for i, node := range survivors {
		renderer := node.Renderer()
		if renderer == nil || renderer.SharedMesh == nil {
			continue
		}
		skin, err := buildOutputSkin(&doc, src, renderer, nodeToOutput)
		if err != nil {
			return nil, err
		}
		doc.Skins = append(doc.Skins, skin)
		doc.Nodes[i].Skin = gltf.Index(len(doc.Skins) - 1)
	}

	doc.Scenes = make([]*gltf.Scene, len(src.Scenes))
	for i, scene := range src.Scenes {
		copied := *scene
		copied.Nodes = remapIndexes(scene.Nodes, sourceToOutput)
		doc.Scenes[i] = &copied
	}
	doc.Animations = remapAnimations(src.Animations, sourceToOutput)

	removed := len(src.Nodes) - len(survivors)
	if removed > 0 && len(src.Extensions) > 0 {
		logGltfWarn("%s: 拡張内のノード参照は再割当されません removed=%d", model.WarningNodeExtensionsNotRemapped, removed)
	}
	return &doc, nil
}

// collectSurvivingNodes は破棄されていない読込元ノードを読込元の並びで返す。
func collectSurvivingNodes(root *model.Node) []*model.Node {
	survivors := make([]*model.Node, 0)
	root.Walk(func(node *model.Node) bool {
		if node.SourceIndex >= 0 {
			survivors = append(survivors, node)
		}
		return true
	})
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].SourceIndex < survivors[j].SourceIndex
	})
	return survivors
}

// buildOutputSkin はレンダラーのボーン配列からスキンを生成する。
// 再ターゲット済みメッシュの逆バインド行列は新しいaccessorとして書き込む。
func buildOutputSkin(
	doc *gltf.Document,
	src *gltf.Document,
	renderer *model.SkinnedMeshRenderer,
	nodeToOutput map[*model.Node]int,
) (*gltf.Skin, error) {
	mesh := renderer.SharedMesh
	joints := make([]int, len(renderer.Bones))
	for i, bone := range renderer.Bones {
		index, ok := nodeToOutput[bone]
		if !ok {
			return nil, NewIoSaveFailed("ボーンが保存対象にありません: renderer=%s index=%d", nil, renderer.Name(), i)
		}
		joints[i] = index
	}

	var original *gltf.Skin
	if mesh.SourceSkinIndex >= 0 && mesh.SourceSkinIndex < len(src.Skins) {
		original = src.Skins[mesh.SourceSkinIndex]
	}
	skin := &gltf.Skin{Joints: joints}
	if original != nil {
		skin.Name = original.Name
		skin.Extensions = original.Extensions
		skin.Extras = original.Extras
	}
	if renderer.RootBone != nil {
		if index, ok := nodeToOutput[renderer.RootBone]; ok {
			skin.Skeleton = gltf.Index(index)
		}
	}

	if original != nil && !mesh.IsDerived() {
		skin.InverseBindMatrices = original.InverseBindMatrices
		return skin, nil
	}
	if len(mesh.BindPoses) != len(joints) {
		return nil, NewIoSaveFailed("ボーン数とバインドポーズ数が一致しません: renderer=%s", nil, renderer.Name())
	}
	matrices := make([][4][4]float32, len(mesh.BindPoses))
	for i, bindPose := range mesh.BindPoses {
		matrices[i] = mat4ToColumns(bindPose)
	}
	skin.InverseBindMatrices = gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, matrices))
	logGltfDebug("逆バインド行列書き込み: renderer=%s mesh=%s count=%d", renderer.Name(), mesh.Name, len(matrices))
	return skin, nil
}

// remapIndexes は読込元ノードindexを保存先indexへ置き換え、削除済みを除外する。
func remapIndexes(indexes []int, sourceToOutput map[int]int) []int {
	remapped := make([]int, 0, len(indexes))
	for _, index := range indexes {
		if mapped, ok := sourceToOutput[index]; ok {
			remapped = append(remapped, mapped)
		}
	}
	return remapped
}

// remapAnimations はアニメーションチャンネルの対象ノードを置き換え、削除済みノード向けのチャンネルを除外する。
func remapAnimations(animations []*gltf.Animation, sourceToOutput map[int]int) []*gltf.Animation {
	if animations == nil {
		return nil
	}
	remapped := make([]*gltf.Animation, len(animations))
	for i, animation := range animations {
		copied := *animation
		copied.Channels = make([]*gltf.AnimationChannel, 0, len(animation.Channels))
		for _, channel := range animation.Channels {
			if channel.Target.Node == nil {
				copied.Channels = append(copied.Channels, channel)
				continue
			}
			mapped, ok := sourceToOutput[*channel.Target.Node]
			if !ok {
				continue
			}
			channelCopy := *channel
			channelCopy.Target.Node = gltf.Index(mapped)
			copied.Channels = append(copied.Channels, &channelCopy)
		}
		remapped[i] = &copied
	}
	return remapped
}
