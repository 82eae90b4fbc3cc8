package trlevel

// Callbacks receive data as it is produced during a load. Implementations
// must not retain the slices they are given beyond the call.
type Callbacks interface {
	OnProgress(message string)
	OnTextile(index, width, height int, rgba []byte)
	OnSoundSample(mapIndex, detailIndex, sampleIndex int, data []byte)
}

// NopCallbacks ignores every event.
type NopCallbacks struct{}

func (NopCallbacks) OnProgress(string)                   {}
func (NopCallbacks) OnTextile(int, int, int, []byte)     {}
func (NopCallbacks) OnSoundSample(int, int, int, []byte) {}

// CallbackFuncs adapts plain functions to Callbacks. Nil fields are skipped.
type CallbackFuncs struct {
	Progress    func(message string)
	Textile     func(index, width, height int, rgba []byte)
	SoundSample func(mapIndex, detailIndex, sampleIndex int, data []byte)
}

func (f CallbackFuncs) OnProgress(message string) {
	if f.Progress != nil {
		f.Progress(message)
	}
}

func (f CallbackFuncs) OnTextile(index, width, height int, rgba []byte) {
	if f.Textile != nil {
		f.Textile(index, width, height, rgba)
	}
}

func (f CallbackFuncs) OnSoundSample(mapIndex, detailIndex, sampleIndex int, data []byte) {
	if f.SoundSample != nil {
		f.SoundSample(mapIndex, detailIndex, sampleIndex, data)
	}
}

// offsetCallbacks shifts textile indices so pack entries report globally
// unique pages.
type offsetCallbacks struct {
	Callbacks
	textileBase int
}

func (o offsetCallbacks) OnTextile(index, width, height int, rgba []byte) {
	o.Callbacks.OnTextile(o.textileBase+index, width, height, rgba)
}
