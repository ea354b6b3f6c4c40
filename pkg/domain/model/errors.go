// 指示: miu200521358
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAvatarRootNotFound は祖先にアバタールートが無いことを表す。
	ErrAvatarRootNotFound = errors.New("アバタールートが見つかりません")
	// ErrReparentCycle は親子付け替えで循環が生じることを表す。
	ErrReparentCycle = errors.New("親子関係が循環します")
	// ErrDestroyedNode は破棄済みノードへの操作を表す。
	ErrDestroyedNode = errors.New("破棄済みノードです")
)

// NewAvatarRootNotFound はアバタールート未検出エラーを生成する。
func NewAvatarRootNotFound(rendererName string) error {
	return fmt.Errorf("%w: renderer=%s", ErrAvatarRootNotFound, rendererName)
}

// NewReparentCycle は親子循環エラーを生成する。
func NewReparentCycle(nodeName string, parentName string) error {
	return fmt.Errorf("%w: node=%s parent=%s", ErrReparentCycle, nodeName, parentName)
}

// NewDestroyedNode は破棄済みノードエラーを生成する。
func NewDestroyedNode(nodeName string) error {
	return fmt.Errorf("%w: %s", ErrDestroyedNode, nodeName)
}
