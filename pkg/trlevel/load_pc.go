package trlevel

// meshAndAnimationSteps are the sections from floor data to static meshes,
// shared by every Tomb1-3 layout.
func (d *decoder) meshAndAnimationSteps() []step {
	return []step{
		{"Reading floor data", d.readFloorData},
		{"Reading mesh data", d.readMeshData},
		{"Reading mesh pointers", d.readMeshPointers},
		{"Reading animations", d.readAnimations},
		{"Reading state changes", d.readStateChanges},
		{"Reading animation dispatches", d.readAnimDispatches},
		{"Reading animation commands", d.readAnimCommands},
		{"Reading mesh trees", d.readMeshTrees},
		{"Reading frames", d.readFrames},
		{"Reading models", d.readModels},
		{"Reading static meshes", d.readStaticMeshes},
	}
}

func loadTR1PC(d *decoder) error {
	c := NewCursor(d.data)
	steps := []step{
		{"Reading version", d.skipVersion},
		{"Reading textiles", d.readTextiles8},
		{"", d.skipUnused32},
		{"", d.readRooms},
	}
	steps = append(steps, d.meshAndAnimationSteps()...)
	steps = append(steps,
		step{"Reading object textures", d.readObjectTextures},
		step{"Reading sprite textures", d.readSpriteTextures},
		step{"Reading sprite sequences", d.readSpriteSequences},
		step{"Reading cameras", d.readCameras},
		step{"Reading sound sources", d.readSoundSources},
		step{"Reading boxes", d.readBoxes},
		step{"Reading animated textures", d.readAnimatedTextures},
		step{"Reading entities", d.readEntities},
		step{"Reading light map", d.readLightmap},
		step{"Reading 8-bit palette", d.readPalette8},
		step{"Reading cinematic frames", d.readCinematicFrames},
		step{"Reading demo data", d.readDemoData},
		step{"Reading sound map", d.readSoundMap},
		step{"Reading sound details", d.readSoundDetails},
		step{"Reading sound samples", d.readSampleData},
		step{"Reading sound sample indices", d.readSampleIndices},
	)
	return d.run(c, steps)
}

func loadTR2PC(d *decoder) error {
	c := NewCursor(d.data)
	steps := []step{
		{"Reading version", d.skipVersion},
		{"Reading 8-bit palette", d.readPalette8},
		{"Reading 16-bit palette", d.readPalette16},
		{"Reading textiles", d.readTextiles8And16},
		{"", d.skipUnused32},
		{"", d.readRooms},
	}
	steps = append(steps, d.meshAndAnimationSteps()...)
	steps = append(steps,
		step{"Reading object textures", d.readObjectTextures},
		step{"Reading sprite textures", d.readSpriteTextures},
		step{"Reading sprite sequences", d.readSpriteSequences},
		step{"Reading cameras", d.readCameras},
		step{"Reading sound sources", d.readSoundSources},
		step{"Reading boxes", d.readBoxes},
		step{"Reading animated textures", d.readAnimatedTextures},
		step{"Reading entities", d.readEntities},
		step{"Reading light map", d.readLightmap},
		step{"Reading cinematic frames", d.readCinematicFrames},
		step{"Reading demo data", d.readDemoData},
		step{"Reading sound map", d.readSoundMap},
		step{"Reading sound details", d.readSoundDetails},
		step{"Reading sound sample indices", d.readSampleIndices},
	)
	return d.run(c, steps)
}

func loadTR3PC(d *decoder) error {
	c := NewCursor(d.data)
	steps := []step{
		{"Reading version", d.skipVersion},
		{"Reading 8-bit palette", d.readPalette8},
		{"Reading 16-bit palette", d.readPalette16},
		{"Reading textiles", d.readTextiles8And16},
		{"", d.skipUnused32},
		{"", d.readRooms},
	}
	steps = append(steps, d.meshAndAnimationSteps()...)
	steps = append(steps,
		step{"Reading sprite textures", d.readSpriteTextures},
		step{"Reading sprite sequences", d.readSpriteSequences},
		step{"Reading cameras", d.readCameras},
		step{"Reading sound sources", d.readSoundSources},
		step{"Reading boxes", d.readBoxes},
		step{"Reading animated textures", d.readAnimatedTextures},
		step{"Reading object textures", d.readObjectTextures},
		step{"Reading entities", d.readEntities},
		step{"Reading light map", d.readLightmap},
		step{"Reading cinematic frames", d.readCinematicFrames},
		step{"Reading demo data", d.readDemoData},
		step{"Reading sound map", d.readSoundMap},
		step{"Reading sound details", d.readSoundDetails},
		step{"Reading sound sample indices", d.readSampleIndices},
	)
	return d.run(c, steps)
}
