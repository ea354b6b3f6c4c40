// 指示: miu200521358
package model

// Avatar は1体分のアバター(ルートノードと読込元文書)を表す。
type Avatar struct {
	Name string
	Path string
	Root *Node
	// Source は読込元形式固有の文書。書き出し時にリポジトリが参照する。
	Source any
}

// Renderers は無効ノード配下を含む全スキンメッシュレンダラーを返す。
func (a *Avatar) Renderers() []*SkinnedMeshRenderer {
	if a == nil || a.Root == nil {
		return nil
	}
	return a.Root.SkinnedMeshRenderers(true)
}

// NodeCount は破棄済みを除くノード数を返す。
func (a *Avatar) NodeCount() int {
	if a == nil {
		return 0
	}
	count := 0
	a.Root.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
