// 指示: miu200521358
package gltf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/miu200521358/mu_bonemerge/pkg/shared/logging"
	"github.com/qmuntal/gltf"
)

// LoadProgressEventType はglTF読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeDocumentParsed は文書解析完了イベントを表す。
	LoadProgressEventTypeDocumentParsed LoadProgressEventType = "document_parsed"
	// LoadProgressEventTypeHierarchyBuilt はノード階層構築完了イベントを表す。
	LoadProgressEventTypeHierarchyBuilt LoadProgressEventType = "hierarchy_built"
	// LoadProgressEventTypeRendererProcessed はレンダラー変換進行イベントを表す。
	LoadProgressEventTypeRendererProcessed LoadProgressEventType = "renderer_processed"
	// LoadProgressEventTypeCompleted はglTF読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はglTF読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	NodeCount     int
	SkinCount     int
	RendererTotal int
	RendererDone  int
}

// GltfRepository はglTF/GLB/VRM形式のアバター入出力を表す。
type GltfRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewGltfRepository はGltfRepositoryを生成する。
func NewGltfRepository() *GltfRepository {
	return &GltfRepository{}
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *GltfRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *GltfRepository) CanLoad(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb", ".vrm":
		return true
	default:
		return false
	}
}

// InferName はパスから表示名を推定する。
func (r *GltfRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はglTF文書を読み込み、ノード階層とスキンメッシュレンダラーを持つアバターへ変換する。
func (r *GltfRepository) Load(path string) (*model.Avatar, error) {
	if !r.CanLoad(path) {
		return nil, NewIoExtInvalid(path, nil)
	}
	logGltfInfo("glTF読込開始: file=%s", filepath.Base(path))

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, NewIoFileNotFound(path, err)
		}
		return nil, NewIoParseFailed("ファイル情報の取得に失敗しました: %s", err, path)
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, NewIoParseFailed("glTF文書の解析に失敗しました: %s", err, path)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:      LoadProgressEventTypeDocumentParsed,
		NodeCount: len(doc.Nodes),
		SkinCount: len(doc.Skins),
	})
	logGltfDebug("glTF読込ステップ: 文書解析完了 nodes=%d skins=%d meshes=%d", len(doc.Nodes), len(doc.Skins), len(doc.Meshes))

	root, nodes, err := buildNodeHierarchy(doc)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:      LoadProgressEventTypeHierarchyBuilt,
		NodeCount: len(nodes),
		SkinCount: len(doc.Skins),
	})

	if err := r.attachRenderers(doc, nodes); err != nil {
		return nil, err
	}

	avatar := &model.Avatar{
		Name:   r.InferName(path),
		Path:   path,
		Root:   root,
		Source: doc,
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:      LoadProgressEventTypeCompleted,
		NodeCount: len(nodes),
		SkinCount: len(doc.Skins),
	})
	logGltfInfo("glTF読込完了: file=%s nodes=%d renderers=%d", filepath.Base(path), avatar.NodeCount(), len(avatar.Renderers()))
	return avatar, nil
}

// attachRenderers はメッシュとスキンを持つノードへレンダラーを割り当てる。
func (r *GltfRepository) attachRenderers(doc *gltf.Document, nodes []*model.Node) error {
	total := 0
	for _, gn := range doc.Nodes {
		if gn != nil && gn.Mesh != nil && gn.Skin != nil {
			total++
		}
	}
	done := 0
	for i, gn := range doc.Nodes {
		if gn == nil || gn.Mesh == nil || gn.Skin == nil {
			continue
		}
		renderer, err := buildRenderer(doc, nodes, i)
		if err != nil {
			return err
		}
		nodes[i].AttachRenderer(renderer)
		done++
		r.reportLoadProgress(LoadProgressEvent{
			Type:          LoadProgressEventTypeRendererProcessed,
			NodeCount:     len(nodes),
			SkinCount:     len(doc.Skins),
			RendererTotal: total,
			RendererDone:  done,
		})
	}
	return nil
}

// reportLoadProgress は読込進捗を通知する。
func (r *GltfRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// logGltfInfo はglTF入出力のINFOログを出力する。
func logGltfInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logGltfDebug はglTF入出力のデバッグログを出力する。
func logGltfDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logGltfWarn はglTF入出力の警告ログを出力する。
func logGltfWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
