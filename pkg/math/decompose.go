package math

// Affine decomposition in the Graphics Gems style: scale and shear are
// stripped from the matrix columns by Gram-Schmidt, the remainder is a
// pure rotation. Shear is expressed as XY/XZ/YZ factors in that order.

// Decompose splits an affine matrix into scale, shear, rotation and
// translation such that Compose(scale, shear, rot, trans) rebuilds it.
func (m Mat4) Decompose() (scale, shear Vec3, rot Quat, trans Vec3) {
	c0 := Vec3{m[0], m[1], m[2]}
	c1 := Vec3{m[4], m[5], m[6]}
	c2 := Vec3{m[8], m[9], m[10]}

	scale.X = c0.Length()
	if scale.X != 0 {
		c0 = c0.Scale(1 / scale.X)
	}

	shear.X = c0.Dot(c1) // XY
	c1 = c1.Sub(c0.Scale(shear.X))
	scale.Y = c1.Length()
	if scale.Y != 0 {
		c1 = c1.Scale(1 / scale.Y)
		shear.X /= scale.Y
	}

	shear.Y = c0.Dot(c2) // XZ
	c2 = c2.Sub(c0.Scale(shear.Y))
	shear.Z = c1.Dot(c2) // YZ
	c2 = c2.Sub(c1.Scale(shear.Z))
	scale.Z = c2.Length()
	if scale.Z != 0 {
		c2 = c2.Scale(1 / scale.Z)
		shear.Y /= scale.Z
		shear.Z /= scale.Z
	}

	// A negative determinant means the basis is left-handed; flip it.
	if c0.Dot(c1.Cross(c2)) < 0 {
		scale = scale.Scale(-1)
		c0 = c0.Scale(-1)
		c1 = c1.Scale(-1)
		c2 = c2.Scale(-1)
	}

	rotMat := Mat4{
		c0.X, c0.Y, c0.Z, 0,
		c1.X, c1.Y, c1.Z, 0,
		c2.X, c2.Y, c2.Z, 0,
		0, 0, 0, 1,
	}
	rot = QuatFromMat4(rotMat)

	trans = m.Translation()
	return scale, shear, rot, trans
}

// Compose rebuilds an affine matrix from decomposed components,
// applying scale first, then shear, rotation and translation.
func Compose(scale, shear Vec3, rot Quat, trans Vec3) Mat4 {
	m := rot.ToMat4().Mul(Shear(shear.X, shear.Y, shear.Z)).Mul(Scale(scale.X, scale.Y, scale.Z))
	return Translate(trans.X, trans.Y, trans.Z).Mul(m)
}
