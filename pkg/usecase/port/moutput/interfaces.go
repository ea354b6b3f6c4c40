// 指示: miu200521358
package moutput

import "github.com/miu200521358/mu_bonemerge/pkg/domain/model"

// SaveOptions は保存時のオプションを表す。
type SaveOptions struct {
	// Binary が真の場合はGLB形式で保存する。
	Binary bool
}

// IAvatarReader はアバター読み込みの契約を表す。
type IAvatarReader interface {
	// CanLoad は拡張子に応じて読み込み可否を判定する。
	CanLoad(path string) bool
	// Load はアバターを読み込む。
	Load(path string) (*model.Avatar, error)
}

// IAvatarWriter はアバター書き出しの契約を表す。
type IAvatarWriter interface {
	// Save はアバターを保存する。
	Save(path string, avatar *model.Avatar, opts SaveOptions) error
}

// IAssetStore は再ターゲット後メッシュ資産の保存契約を表す。
type IAssetStore interface {
	// CreateAsset はメッシュ資産を指定パスへ保存する。
	CreateAsset(mesh *model.Mesh, assetPath string) error
}

// IAssetPathGenerator は資産保存パスの生成契約を表す。
type IAssetPathGenerator interface {
	// GenerateAssetPath は一意な資産パスを生成する。
	GenerateAssetPath() string
}
