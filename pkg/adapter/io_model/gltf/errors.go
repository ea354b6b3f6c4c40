// 指示: miu200521358
package gltf

import (
	"errors"
	"fmt"
)

var (
	// ErrIoExtInvalid は拡張子が未対応の場合のエラー。
	ErrIoExtInvalid = errors.New("拡張子が未対応です")
	// ErrIoFileNotFound はファイルが存在しない場合のエラー。
	ErrIoFileNotFound = errors.New("ファイルが見つかりません")
	// ErrIoParseFailed は文書の解析に失敗した場合のエラー。
	ErrIoParseFailed = errors.New("ファイルの解析に失敗しました")
	// ErrIoSaveFailed は文書の保存に失敗した場合のエラー。
	ErrIoSaveFailed = errors.New("ファイルの保存に失敗しました")
)

// IoError は入出力エラーの種別と詳細を保持する。
type IoError struct {
	kind    error
	message string
	cause   error
}

// Error はエラーメッセージを返す。
func (e *IoError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Unwrap は種別と原因を返す。
func (e *IoError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// NewIoExtInvalid は拡張子エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return &IoError{kind: ErrIoExtInvalid, message: path, cause: cause}
}

// NewIoFileNotFound はファイル未検出エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return &IoError{kind: ErrIoFileNotFound, message: path, cause: cause}
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return &IoError{kind: ErrIoParseFailed, message: fmt.Sprintf(format, params...), cause: cause}
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(format string, cause error, params ...any) error {
	return &IoError{kind: ErrIoSaveFailed, message: fmt.Sprintf(format, params...), cause: cause}
}
