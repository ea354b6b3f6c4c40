// 指示: miu200521358
package model

const (
	// WarningShapeKeysNotAdjusted はシェイプキー未補正警告。
	WarningShapeKeysNotAdjusted = "WarningShapeKeysNotAdjusted"
	// WarningNodeExtensionsNotRemapped はノード参照を含む拡張の未再割当警告。
	WarningNodeExtensionsNotRemapped = "WarningNodeExtensionsNotRemapped"
	// WarningMergeBoneNotFound は統合指定ボーン未検出警告。
	WarningMergeBoneNotFound = "WarningMergeBoneNotFound"
)
