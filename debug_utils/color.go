package debug_utils

type Colorb [4]uint8

func (c Colorb) R() uint8 {
	return c[0]
}

func (c Colorb) G() uint8 {
	return c[1]
}

func (c Colorb) B() uint8 {
	return c[2]
}

func (c Colorb) A() uint8 {
	return c[3]
}

// Float returns the rgb channels in [0, 1].
func (c Colorb) Float() (r, g, b float32) {
	return float32(c.R()) / 255.0, float32(c.G()) / 255.0, float32(c.B()) / 255.0
}

func Bit(a, b int) int {
	return (a & (1 << b)) >> b
}

// DuIntToCol spreads consecutive ids over distinct colors.
func DuIntToCol(i, a int) Colorb {
	r := Bit(i, 1) + Bit(i, 3)*2 + 1
	g := Bit(i, 2) + Bit(i, 4)*2 + 1
	b := Bit(i, 0) + Bit(i, 5)*2 + 1
	return DuRGBA(r*63, g*63, b*63, a)
}

func DuRGBA[T int | int32 | uint8](r, g, b, a T) Colorb {
	return Colorb{uint8(r), uint8(g), uint8(b), uint8(a)}
}

func duMultCol(col Colorb, d uint8) Colorb {
	r := int(col.R())
	g := int(col.G())
	b := int(col.B())
	a := int(col.A())
	di := int(d)
	return DuRGBA(r*di>>8, g*di>>8, b*di>>8, a)
}

func DuDarkenCol(col Colorb) Colorb {
	return duMultCol(col, 128)
}
