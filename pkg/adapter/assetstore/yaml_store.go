// 指示: miu200521358
package assetstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
	"github.com/miu200521358/mu_bonemerge/pkg/shared/logging"
	"gopkg.in/yaml.v3"
)

// MeshAsset はYAMLへ書き出すメッシュ資産の内容を表す。
// BindPoses は行優先の4x4行列。
type MeshAsset struct {
	Name        string          `yaml:"name"`
	DerivedFrom string          `yaml:"derived_from,omitempty"`
	VertexCount int             `yaml:"vertex_count"`
	BoneCount   int             `yaml:"bone_count"`
	BindPoses   [][4][4]float64 `yaml:"bind_poses"`
	BlendShapes []string        `yaml:"blend_shapes,omitempty"`
}

// YamlAssetStore はメッシュ資産を1メッシュ1ファイルのYAMLで保存する。
type YamlAssetStore struct{}

// NewYamlAssetStore はYamlAssetStoreを生成する。
func NewYamlAssetStore() *YamlAssetStore {
	return &YamlAssetStore{}
}

// CreateAsset はメッシュ資産をassetPathへ書き出す。
func (s *YamlAssetStore) CreateAsset(mesh *model.Mesh, assetPath string) error {
	if mesh == nil {
		return fmt.Errorf("保存対象メッシュが未設定です")
	}
	if strings.TrimSpace(assetPath) == "" {
		return fmt.Errorf("資産パスが未指定です: mesh=%s", mesh.Name)
	}
	b, err := yaml.Marshal(NewMeshAsset(mesh))
	if err != nil {
		return fmt.Errorf("メッシュ資産のYAML変換に失敗しました: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(assetPath), 0o755); err != nil {
		return fmt.Errorf("資産フォルダの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(assetPath, b, 0o644); err != nil {
		return fmt.Errorf("メッシュ資産の書き込みに失敗しました: %w", err)
	}
	if logger := logging.DefaultLogger(); logger != nil {
		logger.Debug("メッシュ資産書き込み: mesh=%s path=%s bytes=%d", mesh.Name, assetPath, len(b))
	}
	return nil
}

// ReadMeshAsset はYAMLのメッシュ資産を読み込む。
func ReadMeshAsset(assetPath string) (*MeshAsset, error) {
	b, err := os.ReadFile(assetPath)
	if err != nil {
		return nil, fmt.Errorf("メッシュ資産の読み込みに失敗しました: %w", err)
	}
	asset := &MeshAsset{}
	if err := yaml.Unmarshal(b, asset); err != nil {
		return nil, fmt.Errorf("メッシュ資産の解析に失敗しました: %w", err)
	}
	return asset, nil
}

// NewMeshAsset はメッシュから資産内容を生成する。
func NewMeshAsset(mesh *model.Mesh) MeshAsset {
	asset := MeshAsset{
		Name:        mesh.Name,
		DerivedFrom: mesh.DerivedFrom,
		VertexCount: len(mesh.Vertices),
		BoneCount:   len(mesh.BindPoses),
		BindPoses:   make([][4][4]float64, len(mesh.BindPoses)),
	}
	for i, bindPose := range mesh.BindPoses {
		asset.BindPoses[i] = rowMajor(bindPose)
	}
	for _, shape := range mesh.BlendShapes {
		asset.BlendShapes = append(asset.BlendShapes, shape.Name)
	}
	return asset
}

// BindPose は行優先の行列を行列型へ戻す。
func (a MeshAsset) BindPose(index int) mgl64.Mat4 {
	var m mgl64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, a.BindPoses[index][r][c])
		}
	}
	return m
}

// rowMajor は行列を行優先の配列へ変換する。
func rowMajor(m mgl64.Mat4) [4][4]float64 {
	var rows [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			rows[r][c] = m.At(r, c)
		}
	}
	return rows
}
