// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultEpsilon は行列比較の既定許容誤差。
	DefaultEpsilon = 1e-9
	scaleEpsilon   = 1e-12
)

var (
	// ZeroVec3 は零ベクトル。
	ZeroVec3 = mgl64.Vec3{0, 0, 0}
	// OneVec3 は等倍スケール。
	OneVec3 = mgl64.Vec3{1, 1, 1}
)

// NewTrsMat4 は平行移動・回転・拡縮からアフィン行列 T*R*S を生成する。
func NewTrsMat4(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(NormalizedQuat(rotation).Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// DecomposeMat4 はせん断を含まないアフィン行列を平行移動・回転・拡縮へ分解する。
// 負の行列式はX軸スケールの符号へ寄せる。
func DecomposeMat4(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	translation := mgl64.Vec3{m[12], m[13], m[14]}

	sx := r3.Norm(r3.Vec{X: m[0], Y: m[1], Z: m[2]})
	sy := r3.Norm(r3.Vec{X: m[4], Y: m[5], Z: m[6]})
	sz := r3.Norm(r3.Vec{X: m[8], Y: m[9], Z: m[10]})
	if m.Mat3().Det() < 0 {
		sx = -sx
	}

	dx, dy, dz := safeDivisor(sx), safeDivisor(sy), safeDivisor(sz)
	rotation := mgl64.Mat3{
		m[0] / dx, m[1] / dx, m[2] / dx,
		m[4] / dy, m[5] / dy, m[6] / dy,
		m[8] / dz, m[9] / dz, m[10] / dz,
	}
	quat := NormalizedQuat(mgl64.Mat4ToQuat(rotation.Mat4()))

	return translation, quat, mgl64.Vec3{sx, sy, sz}
}

// NormalizedQuat は正規化済みクォータニオンを返す。長さ0の場合は単位クォータニオンを返す。
func NormalizedQuat(q mgl64.Quat) mgl64.Quat {
	if q.Len() < scaleEpsilon {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// TransformPoint はアフィン行列で点を変換する。
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// ToR3 はmgl64ベクトルをr3ベクトルへ変換する。
func ToR3(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// FromR3 はr3ベクトルをmgl64ベクトルへ変換する。
func FromR3(v r3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Distance は2点間の距離を返す。
func Distance(a, b mgl64.Vec3) float64 {
	return r3.Norm(r3.Sub(ToR3(a), ToR3(b)))
}

// IsIdentity は行列が許容誤差内で単位行列か判定する。
func IsIdentity(m mgl64.Mat4, epsilon float64) bool {
	return m.ApproxEqualThreshold(mgl64.Ident4(), epsilon)
}

// safeDivisor は0割りを避けるための除数を返す。
func safeDivisor(v float64) float64 {
	if math.Abs(v) < scaleEpsilon {
		return 1
	}
	return v
}
