package trlevel

// decoderFor maps a detected variant onto its structural decoder.
func decoderFor(pv PlatformAndVersion) (decodeFunc, error) {
	if pv.IsPack {
		return loadPack, nil
	}

	switch pv.Platform {
	case PlatformPC:
		switch pv.Version {
		case Tomb1:
			return loadTR1PC, nil
		case Tomb2:
			return loadTR2PC, nil
		case Tomb3:
			return loadTR3PC, nil
		case Tomb4:
			if !pv.Remastered {
				return loadTR4PC, nil
			}
		case Tomb5:
			if !pv.Remastered {
				return loadTR5PC, nil
			}
		}
	case PlatformPSX:
		if pv.Remastered {
			break
		}
		switch pv.Version {
		case Tomb1, Tomb2, Tomb3:
			return loadPSX, nil
		}
	case PlatformSaturn:
		switch {
		case pv.Version == Tomb1 && !pv.IsTR2Saturn:
			return loadSaturn, nil
		case pv.Version == Tomb2 && pv.IsTR2Saturn:
			return loadSaturn, nil
		}
	case PlatformDreamcast:
		switch pv.Version {
		case Tomb4:
			return loadTR4Dreamcast, nil
		case Tomb5:
			return loadTR5Dreamcast, nil
		}
	}
	return nil, &UnsupportedVariantError{PV: pv}
}
