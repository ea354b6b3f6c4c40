// 指示: miu200521358
package assetstore

import (
	"fmt"

	"github.com/miu200521358/mu_bonemerge/pkg/domain/model"
)

// StoredAsset は保存済み資産を表す。
type StoredAsset struct {
	Path string
	Mesh *model.Mesh
}

// MemoryAssetStore は資産をメモリ上へ保存順に保持する。
type MemoryAssetStore struct {
	assets []StoredAsset
	paths  map[string]struct{}
}

// NewMemoryAssetStore はMemoryAssetStoreを生成する。
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{paths: make(map[string]struct{})}
}

// CreateAsset はメッシュを資産として登録する。
func (s *MemoryAssetStore) CreateAsset(mesh *model.Mesh, assetPath string) error {
	if mesh == nil {
		return fmt.Errorf("保存対象メッシュが未設定です")
	}
	if assetPath != "" {
		if _, ok := s.paths[assetPath]; ok {
			return fmt.Errorf("資産パスが重複しています: %s", assetPath)
		}
		s.paths[assetPath] = struct{}{}
	}
	s.assets = append(s.assets, StoredAsset{Path: assetPath, Mesh: mesh})
	return nil
}

// Assets は保存済み資産を保存順に返す。
func (s *MemoryAssetStore) Assets() []StoredAsset {
	assets := make([]StoredAsset, len(s.assets))
	copy(assets, s.assets)
	return assets
}
