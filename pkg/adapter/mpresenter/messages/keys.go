// 指示: miu200521358
// Package messages はログ・エラー表示に使うメッセージを提供する。
package messages

// メッセージ一覧。
const (
	MessageInputRequired       = "入力アバターファイルを指定してください"
	MessageOutputExtInvalid    = "出力拡張子が未対応です"
	MessageInputExtInvalid     = "入力拡張子が未対応です"
	MessageReaderMissing       = "アバター読み込みリポジトリが設定されていません"
	MessageWriterMissing       = "アバター保存リポジトリが設定されていません"
	MessageAvatarMissing       = "アバター読み込み結果が空です"
	MessageAvatarRootMissing   = "アバタールートノードがありません"
	MessageMergeFailed         = "ボーン統合処理に失敗しました"
	MessageSaveFailed          = "アバター保存に失敗しました"
	MessageRetargetFailed      = "メッシュ再ターゲットに失敗しました"
	MessageCollapseFailed      = "ボーン階層の統合に失敗しました"
	MessageAssetCreateFailed   = "メッシュ資産の保存に失敗しました"
	MessageRegistryInvalid     = "統合候補ボーンの登録内容が不正です"
	MessageBindPoseLenMismatch = "ボーン数とバインドポーズ数が一致しません"

	LogLoadSuccess          = "アバター読込成功: %s"
	LogSaveSuccess          = "アバター保存成功: %s"
	LogRegisterMergeBone    = "統合候補登録: %s"
	LogVetoMergeBone        = "統合候補除外: %s"
	LogMergeBoneNotFound    = "統合指定ボーンが見つかりません: %s"
	LogRetargetMesh         = "メッシュ再ターゲット: renderer=%s mesh=%s rebound=%d"
	LogSkipRenderer         = "再ターゲット対象外: renderer=%s"
	LogAssetCreated         = "メッシュ資産保存: mesh=%s path=%s"
	LogCollapseBone         = "ボーン統合: %s -> %s children=%d"
	LogSkipStalePair        = "統合済みのため省略: %s"
	LogShapeKeysNotAdjusted = "シェイプキーは補正されません: mesh=%s shapes=%d"
	LogHookStart            = "ビルドフック開始: %T order=%d"
)
