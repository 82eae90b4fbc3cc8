package trlevel

// Floor data functions.
const (
	floorPortal      = 1
	floorSlant       = 2
	ceilingSlant     = 3
	floorTrigger     = 4
	floorDeath       = 5
	floorClimb       = 6
	floorTriangleMin = 7
	floorTriangleMax = 18
	floorMonkey      = 19
	floorMinecartL   = 20
	floorMinecartR   = 21

	floorEndData = 0x8000
)

// Trigger action types that consume an extra word.
const (
	actionCamera = 1
	actionFlyby  = 12
)

// sectorFloorFlags walks the floor data list starting at index and returns
// the flags it declares. Index 0 means no floor data. An unknown function
// stops the walk.
func sectorFloorFlags(fd []uint16, index int, v Version) SectorFlags {
	if index <= 0 || index >= len(fd) {
		return 0
	}
	var flags SectorFlags
	at := index
	next := func() (uint16, bool) {
		if at >= len(fd) {
			return 0, false
		}
		w := fd[at]
		at++
		return w, true
	}

	for {
		w, ok := next()
		if !ok {
			return flags
		}
		fn := w & 0x1F
		sub := (w >> 8) & 0x7F

		switch {
		case fn == floorPortal:
			flags |= SectorPortal
			if _, ok := next(); !ok {
				return flags
			}
		case fn == floorSlant || fn == ceilingSlant:
			if _, ok := next(); !ok {
				return flags
			}
		case fn == floorTrigger:
			flags |= SectorTrigger
			if _, ok := next(); !ok {
				return flags
			}
			if !skipTriggerActions(next, v) {
				return flags
			}
		case fn == floorDeath:
			flags |= SectorDeath
		case fn == floorClimb && v >= Tomb2:
			flags |= climbFlags(sub)
		case fn >= floorTriangleMin && fn <= floorTriangleMax && v >= Tomb3:
			if _, ok := next(); !ok {
				return flags
			}
		case fn == floorMonkey && v >= Tomb3:
			flags |= SectorMonkeySwing
		case fn == floorMinecartL && v == Tomb3:
			flags |= SectorMinecartLeft
		case fn == floorMinecartR && v == Tomb3:
			flags |= SectorMinecartRight
		case fn >= floorMinecartL && v >= Tomb4:
			// Tomb4+ trigger triggerer and beetle markers carry no data.
		default:
			return flags
		}

		if w&floorEndData != 0 {
			return flags
		}
	}
}

func skipTriggerActions(next func() (uint16, bool), v Version) bool {
	for {
		a, ok := next()
		if !ok {
			return false
		}
		kind := (a & 0x7C00) >> 10
		if kind == actionCamera || (kind == actionFlyby && v >= Tomb4) {
			a, ok = next()
			if !ok {
				return false
			}
		}
		if a&floorEndData != 0 {
			return true
		}
	}
}

func climbFlags(sub uint16) SectorFlags {
	var f SectorFlags
	if sub&0x1 != 0 {
		f |= SectorClimbableNorth
	}
	if sub&0x2 != 0 {
		f |= SectorClimbableEast
	}
	if sub&0x4 != 0 {
		f |= SectorClimbableSouth
	}
	if sub&0x8 != 0 {
		f |= SectorClimbableWest
	}
	return f
}

// deriveSectorFlags fills in the flags of every sector and then copies
// climb and monkey swing flags up through stacked rooms.
func deriveSectorFlags(rooms []Room, fd []uint16, v Version) {
	for r := range rooms {
		for s := range rooms[r].Sectors {
			sector := &rooms[r].Sectors[s]
			sector.Flags = sectorFloorFlags(fd, int(sector.FloorDataIndex), v)
			if sector.RoomAbove != NoRoom {
				sector.Flags |= SectorRoomAbove
			}
			if sector.RoomBelow != NoRoom {
				sector.Flags |= SectorRoomBelow
			}
		}
	}
	propagateSectorFlags(rooms)
}

const sectorUnits = 1024

// sectorAbove returns the sector of the room above that shares the world
// position of sector x, z in room r.
func sectorAbove(rooms []Room, r, x, z int) (int, int, int, bool) {
	room := &rooms[r]
	s, ok := room.Sector(x, z)
	if !ok || s.RoomAbove == NoRoom || int(s.RoomAbove) >= len(rooms) {
		return 0, 0, 0, false
	}
	above := int(s.RoomAbove)
	wx := int(room.Info.X) + x*sectorUnits
	wz := int(room.Info.Z) + z*sectorUnits
	ax := (wx - int(rooms[above].Info.X)) / sectorUnits
	az := (wz - int(rooms[above].Info.Z)) / sectorUnits
	if _, ok := rooms[above].Sector(ax, az); !ok {
		return 0, 0, 0, false
	}
	return above, ax, az, true
}

// propagateSectorFlags walks each flagged sector's chain of rooms above,
// stopping when the chain ends or the target already carries the flags.
func propagateSectorFlags(rooms []Room) {
	for r := range rooms {
		room := &rooms[r]
		for x := 0; x < int(room.NumXSectors); x++ {
			for z := 0; z < int(room.NumZSectors); z++ {
				s, ok := room.Sector(x, z)
				if !ok {
					continue
				}
				flags := s.Flags & sectorPropagated
				if flags == 0 {
					continue
				}
				cr, cx, cz := r, x, z
				for {
					ar, ax, az, ok := sectorAbove(rooms, cr, cx, cz)
					if !ok {
						break
					}
					target, _ := rooms[ar].Sector(ax, az)
					if target.Flags.Has(flags) {
						break
					}
					target.Flags |= flags
					cr, cx, cz = ar, ax, az
				}
			}
		}
	}
}
