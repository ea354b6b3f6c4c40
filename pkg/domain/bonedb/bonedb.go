// 指示: miu200521358
// Package bonedb は統合候補ボーンの登録と、統合先ボーンの解決を提供する。
package bonedb

import (
	"errors"
	"fmt"
)

// ErrMergeCycle は統合候補の祖先連鎖が循環していることを表す。
var ErrMergeCycle = errors.New("統合候補ボーンの親子連鎖が循環しています")

// Bone は解決対象ボーンが満たす契約を表す。
type Bone[B any] interface {
	comparable
	// Parent は親ボーンを返す。ルートではゼロ値を返す。
	Parent() B
	// Name はボーン名を返す。
	Name() string
	// IsDestroyed は破棄済みか返す。
	IsDestroyed() bool
}

// BonePair は統合元ボーンと統合先ボーンの組を表す。
type BonePair[B Bone[B]] struct {
	Source      B
	Destination B
}

// Database は1回のビルドパスで使う統合候補ボーンの登録表を表す。
// 登録順を保持し、列挙結果は登録順となる。
type Database[B Bone[B]] struct {
	order          []B
	isRetargetable map[B]bool
}

// NewDatabase は空の登録表を生成する。
func NewDatabase[B Bone[B]]() *Database[B] {
	return &Database[B]{isRetargetable: map[B]bool{}}
}

// Reset は登録内容をすべて破棄する。ビルドパス開始時に呼ぶ。
func (db *Database[B]) Reset() {
	db.order = nil
	db.isRetargetable = map[B]bool{}
}

// Len は登録件数を返す。
func (db *Database[B]) Len() int {
	return len(db.order)
}

// AddMergedBone はボーンを統合候補として登録する。登録済みなら統合可へ戻す。
func (db *Database[B]) AddMergedBone(bone B) {
	if isZero(bone) {
		return
	}
	if _, exists := db.isRetargetable[bone]; !exists {
		db.order = append(db.order, bone)
	}
	db.isRetargetable[bone] = true
}

// MarkNonRetargetable は登録済みボーンを統合不可へ変更する。未登録なら何もしない。
func (db *Database[B]) MarkNonRetargetable(bone B) {
	if _, exists := db.isRetargetable[bone]; exists {
		db.isRetargetable[bone] = false
	}
}

// IsRegistered は登録済みか返す。
func (db *Database[B]) IsRegistered(bone B) bool {
	_, exists := db.isRetargetable[bone]
	return exists
}

// IsRetargetable は登録済みかつ統合可か返す。
func (db *Database[B]) IsRetargetable(bone B) bool {
	return db.isRetargetable[bone]
}

// Resolve は統合候補ボーンの統合先となる最も近い祖先を返す。
// 未登録・ゼロ値・破棄済み、統合先が別の登録ボーン、または連鎖が循環する場合は false を返す。
func (db *Database[B]) Resolve(bone B) (B, bool) {
	resolved, ok, _ := db.resolve(bone)
	return resolved, ok
}

// ResolveWithFallback は Resolve の結果が無い場合、fallbackToOriginal が真なら元のボーンを返す。
func (db *Database[B]) ResolveWithFallback(bone B, fallbackToOriginal bool) (B, bool) {
	if resolved, ok := db.Resolve(bone); ok {
		return resolved, true
	}
	if fallbackToOriginal && !isZero(bone) {
		return bone, true
	}
	var zero B
	return zero, false
}

// RetargetedBones は統合可で統合先が解決できるボーンの組を登録順に返す。
func (db *Database[B]) RetargetedBones() []BonePair[B] {
	pairs := make([]BonePair[B], 0, len(db.order))
	for _, bone := range db.order {
		if !db.isRetargetable[bone] {
			continue
		}
		if dest, ok := db.Resolve(bone); ok {
			pairs = append(pairs, BonePair[B]{Source: bone, Destination: dest})
		}
	}
	return pairs
}

// Validate は全登録ボーンの祖先連鎖を検査し、循環があればエラーを返す。
func (db *Database[B]) Validate() error {
	for _, bone := range db.order {
		if _, _, err := db.resolve(bone); err != nil {
			return err
		}
	}
	return nil
}

// resolve は祖先を辿って統合先を求める。訪問済み集合で循環を検出する。
func (db *Database[B]) resolve(bone B) (B, bool, error) {
	var zero B
	if isZero(bone) || bone.IsDestroyed() {
		return zero, false, nil
	}
	if _, exists := db.isRetargetable[bone]; !exists {
		return zero, false, nil
	}

	visited := map[B]struct{}{}
	current := bone
	for !isZero(current) && db.isRetargetable[current] {
		if _, seen := visited[current]; seen {
			return zero, false, fmt.Errorf("%w: bone=%s at=%s", ErrMergeCycle, bone.Name(), current.Name())
		}
		visited[current] = struct{}{}
		current = current.Parent()
	}

	if isZero(current) {
		return zero, false, nil
	}
	if _, exists := db.isRetargetable[current]; exists {
		return zero, false, nil
	}
	return current, true, nil
}

// isZero はゼロ値(nilポインタ等)か判定する。
func isZero[B comparable](bone B) bool {
	var zero B
	return bone == zero
}
