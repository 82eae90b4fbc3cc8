package trlevel

func quadTriangles(v [4]uint16, texture uint16, doubleSided, coloured bool) []Triangle {
	tris := []Triangle{
		{Vertices: [3]uint16{v[0], v[1], v[2]}, Texture: texture, Coloured: coloured},
		{Vertices: [3]uint16{v[2], v[3], v[0]}, Texture: texture, Coloured: coloured},
	}
	if doubleSided {
		tris = append(tris,
			Triangle{Vertices: [3]uint16{v[2], v[1], v[0]}, Texture: texture, Coloured: coloured},
			Triangle{Vertices: [3]uint16{v[0], v[3], v[2]}, Texture: texture, Coloured: coloured},
		)
	}
	return tris
}

func triTriangles(v [3]uint16, texture uint16, doubleSided, coloured bool) []Triangle {
	tris := []Triangle{{Vertices: v, Texture: texture, Coloured: coloured}}
	if doubleSided {
		tris = append(tris, Triangle{Vertices: [3]uint16{v[2], v[1], v[0]}, Texture: texture, Coloured: coloured})
	}
	return tris
}

// clampRoomTextures applies the texture clamp to room faces and builds the
// room's triangle list.
func clampRoomTextures(room *Room, clamp *textureClamp) {
	room.Geometry = room.Geometry[:0]
	for i := range room.Rectangles {
		f := &room.Rectangles[i]
		clamp.face4(f)
		room.Geometry = append(room.Geometry, quadTriangles(f.Vertices, f.Texture, f.DoubleSided, false)...)
	}
	for i := range room.Triangles {
		f := &room.Triangles[i]
		clamp.face3(f)
		room.Geometry = append(room.Geometry, triTriangles(f.Vertices, f.Texture, f.DoubleSided, false)...)
	}
}

// clampMeshTextures does the same for a mesh. Coloured faces index the
// palette and are not clamped.
func clampMeshTextures(mesh *Mesh, clamp *textureClamp) {
	mesh.Triangles = mesh.Triangles[:0]
	for i := range mesh.TexturedRectangles {
		f := &mesh.TexturedRectangles[i]
		clamp.face4(f)
		mesh.Triangles = append(mesh.Triangles, quadTriangles(f.Vertices, f.Texture, f.DoubleSided, false)...)
	}
	for i := range mesh.TexturedTriangles {
		f := &mesh.TexturedTriangles[i]
		clamp.face3(f)
		mesh.Triangles = append(mesh.Triangles, triTriangles(f.Vertices, f.Texture, f.DoubleSided, false)...)
	}
	for i := range mesh.ColouredRectangles {
		f := &mesh.ColouredRectangles[i]
		f.Texture, f.DoubleSided = splitColoured(f.Texture)
		mesh.Triangles = append(mesh.Triangles, quadTriangles(f.Vertices, f.Texture, f.DoubleSided, true)...)
	}
	for i := range mesh.ColouredTriangles {
		f := &mesh.ColouredTriangles[i]
		f.Texture, f.DoubleSided = splitColoured(f.Texture)
		mesh.Triangles = append(mesh.Triangles, triTriangles(f.Vertices, f.Texture, f.DoubleSided, true)...)
	}
}
