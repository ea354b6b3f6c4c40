// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_bonemerge/pkg/usecase/port/moutput"

// BoneMergeUsecaseDeps はボーン統合ユースケースの依存を表す。
type BoneMergeUsecaseDeps struct {
	AvatarReader       moutput.IAvatarReader
	AvatarWriter       moutput.IAvatarWriter
	AssetStore         moutput.IAssetStore
	AssetPathGenerator moutput.IAssetPathGenerator
}

// BoneMergeUsecase はアバターのボーン統合処理をまとめたユースケースを表す。
type BoneMergeUsecase struct {
	avatarReader       moutput.IAvatarReader
	avatarWriter       moutput.IAvatarWriter
	assetStore         moutput.IAssetStore
	assetPathGenerator moutput.IAssetPathGenerator
}

// NewBoneMergeUsecase はボーン統合ユースケースを生成する。
func NewBoneMergeUsecase(deps BoneMergeUsecaseDeps) *BoneMergeUsecase {
	return &BoneMergeUsecase{
		avatarReader:       deps.AvatarReader,
		avatarWriter:       deps.AvatarWriter,
		assetStore:         deps.AssetStore,
		assetPathGenerator: deps.AssetPathGenerator,
	}
}
