package trlevel

import (
	"encoding/binary"
	"image/color"
)

const (
	textureIndexMask  = 0x7FFF
	textureDoubleSide = 0x8000

	textileSize8   = 256 * 256
	textileSize16  = 256 * 256 * 2
	textileSize32  = 256 * 256 * 4
	textileSizePSX = 256 * 256
	clutSize       = 1024 * 32
	clutEntries    = 16 // colours per clut
)

// palette8 expands a 768 byte 6-bit palette.
func palette8(raw []byte) []color.RGBA {
	out := make([]color.RGBA, len(raw)/3)
	for i := range out {
		out[i] = color.RGBA{
			R: raw[i*3] << 2,
			G: raw[i*3+1] << 2,
			B: raw[i*3+2] << 2,
			A: 0xFF,
		}
	}
	return out
}

// palette16 expands a 1024 byte RGBx palette.
func palette16(raw []byte) []color.RGBA {
	out := make([]color.RGBA, len(raw)/4)
	for i := range out {
		out[i] = color.RGBA{R: raw[i*4], G: raw[i*4+1], B: raw[i*4+2], A: 0xFF}
	}
	return out
}

func argb1555(v uint16) color.RGBA {
	c := color.RGBA{
		R: uint8((v>>10)&0x1F) << 3,
		G: uint8((v>>5)&0x1F) << 3,
		B: uint8(v&0x1F) << 3,
	}
	if v&0x8000 != 0 {
		c.A = 0xFF
	}
	return c
}

func bgr555(v uint16) color.RGBA {
	c := color.RGBA{
		R: uint8(v&0x1F) << 3,
		G: uint8((v>>5)&0x1F) << 3,
		B: uint8((v>>10)&0x1F) << 3,
		A: 0xFF,
	}
	if v == 0 {
		c.A = 0
	}
	return c
}

// textileRGBA converts a textile to 8-bit RGBA pixels.
func (l *Level) textileRGBA(t Textile) []byte {
	out := make([]byte, t.Width*t.Height*4)
	set := func(i int, c color.RGBA) {
		out[i*4] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = c.A
	}
	switch t.Format {
	case Textile8:
		for i, p := range t.Data {
			if p == 0 {
				continue
			}
			set(i, l.PaletteEntry8(int(p)))
		}
	case Textile16:
		for i := 0; i+1 < len(t.Data) && i/2 < t.Width*t.Height; i += 2 {
			set(i/2, argb1555(binary.LittleEndian.Uint16(t.Data[i:])))
		}
	case Textile32:
		for i := 0; i+3 < len(t.Data) && i/4 < t.Width*t.Height; i += 4 {
			set(i/4, color.RGBA{R: t.Data[i+2], G: t.Data[i+1], B: t.Data[i], A: t.Data[i+3]})
		}
	case Textile4:
		for i, p := range t.Data {
			if i*2+1 >= t.Width*t.Height {
				break
			}
			set(i*2, l.PaletteEntry4(uint16(p&0xF)))
			set(i*2+1, l.PaletteEntry4(uint16(p>>4)))
		}
	}
	return out
}

// textureClamp replaces out of range texture indices with the last valid
// index seen, in decode order.
type textureClamp struct {
	count   int
	last    uint16
	clamped int
}

func (t *textureClamp) apply(raw uint16) (uint16, bool) {
	idx := raw & textureIndexMask
	ds := raw&textureDoubleSide != 0
	if int(idx) >= t.count {
		t.clamped++
		return t.last, ds
	}
	t.last = idx
	return idx, ds
}

func (t *textureClamp) face4(f *Face4) {
	f.Texture, f.DoubleSided = t.apply(f.Texture)
}

func (t *textureClamp) face3(f *Face3) {
	f.Texture, f.DoubleSided = t.apply(f.Texture)
}

// splitColoured separates the flat colour index from a coloured face. Tomb1-3
// coloured faces keep the palette index; nothing is clamped.
func splitColoured(raw uint16) (uint16, bool) {
	return raw & textureIndexMask, raw&textureDoubleSide != 0
}

// convertPCTexture normalises a Tomb1-3 PC object texture.
func convertPCTexture(t tr1ObjectTexture) ObjectTexture {
	out := ObjectTexture{
		Attribute: t.Attribute,
		Tile:      t.TileAndFlag & 0x7FFF,
		Flags:     t.TileAndFlag & 0x8000,
	}
	for i, v := range t.Vertices {
		out.Vertices[i] = ObjectTextureVertex{X: v.XPixel, Y: v.YPixel}
	}
	return out
}

func convertTR4Texture(t tr4ObjectTexture) ObjectTexture {
	out := ObjectTexture{
		Attribute: t.Attribute,
		Tile:      t.TileAndFlag & 0x7FFF,
		Flags:     t.NewFlags,
		Width:     t.Width,
		Height:    t.Height,
	}
	for i, v := range t.Vertices {
		out.Vertices[i] = ObjectTextureVertex{X: v.XPixel, Y: v.YPixel}
	}
	return out
}

func convertPSXTexture(t psxObjectTexture) ObjectTexture {
	return ObjectTexture{
		Attribute: t.Attribute,
		Tile:      t.Tile,
		Clut:      t.Clut,
		Vertices: [4]ObjectTextureVertex{
			{X: t.X0, Y: t.Y0},
			{X: t.X1, Y: t.Y1},
			{X: t.X2, Y: t.Y2},
			{X: t.X3, Y: t.Y3},
		},
	}
}

func convertPCSprite(s pcSpriteTexture) SpriteTexture {
	return SpriteTexture{
		Tile: s.Tile, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height,
		Left: s.Left, Top: s.Top, Right: s.Right, Bottom: s.Bottom,
	}
}

func convertPSXSprite(s psxSpriteTexture) SpriteTexture {
	return SpriteTexture{
		Tile: s.Tile, Clut: s.Clut, X: s.U0, Y: s.V0,
		Width: uint16(s.U1 - s.U0), Height: uint16(s.V1 - s.V0),
		Left: s.Left, Top: s.Top, Right: s.Right, Bottom: s.Bottom,
	}
}
