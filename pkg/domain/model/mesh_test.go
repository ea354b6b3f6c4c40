// 指示: miu200521358
package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestMeshCloneIsIndependent(t *testing.T) {
	src := NewMesh("body")
	src.Vertices = []Vertex{{Position: mgl64.Vec3{1, 2, 3}}}
	src.BindPoses = []mgl64.Mat4{mgl64.Ident4()}
	src.BlendShapes = []BlendShape{{Name: "smile", PositionDeltas: []mgl64.Vec3{{0, 0.1, 0}}}}

	dst, err := src.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if dst == src {
		t.Fatalf("clone should have a distinct identity")
	}
	dst.BindPoses[0] = mgl64.Translate3D(1, 0, 0)
	dst.Vertices[0].Position = mgl64.Vec3{}
	dst.BlendShapes[0].PositionDeltas[0] = mgl64.Vec3{}

	if src.BindPoses[0] != mgl64.Ident4() {
		t.Fatalf("source bind pose should be unchanged")
	}
	if src.Vertices[0].Position != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("source vertex should be unchanged")
	}
	if src.BlendShapes[0].PositionDeltas[0] != (mgl64.Vec3{0, 0.1, 0}) {
		t.Fatalf("source blend shape should be unchanged")
	}
	if !src.HasBlendShapes() || src.IsDerived() {
		t.Fatalf("unexpected mesh flags")
	}
}

func TestMeshCloneRejectsNil(t *testing.T) {
	var mesh *Mesh
	if _, err := mesh.Clone(); err == nil {
		t.Fatalf("expected error")
	}
}
