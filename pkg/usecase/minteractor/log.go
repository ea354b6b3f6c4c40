// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_bonemerge/pkg/shared/logging"

// logMergeInfo はボーン統合処理の情報ログを出力する。
func logMergeInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logMergeDebug はボーン統合処理のデバッグログを出力する。
func logMergeDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logMergeWarn はボーン統合処理の警告ログを出力する。
func logMergeWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
