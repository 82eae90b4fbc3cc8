package trlevel

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lahm86/trview-sub000/pkg/files"
)

// Decrypter reverses level encryption in place.
type Decrypter interface {
	DecryptInPlace(data []byte) error
}

// Option configures a load.
type Option func(*options)

type options struct {
	ctx       context.Context
	log       *zap.Logger
	callbacks Callbacks
	decrypter Decrypter
	source    files.Source
	allowPack bool
}

func newOptions(opts []Option) *options {
	o := &options{
		ctx:       context.Background(),
		log:       zap.NewNop(),
		callbacks: NopCallbacks{},
		source:    files.Disk{},
		allowPack: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the activity logger. Loads log under the "Level" name.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithContext stops the load between sections once ctx is done. This is a
// departure from Load otherwise being a single uninterruptible call: a
// cancelled load returns ctx.Err() wrapped in a LoadError, no Level is
// returned, and callbacks fired for earlier sections (textiles, samples,
// progress) are not undone.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithCallbacks sets the receiver of progress, textile and sample events.
func WithCallbacks(cb Callbacks) Option {
	return func(o *options) {
		if cb != nil {
			o.callbacks = cb
		}
	}
}

// WithDecrypter enables loading of encrypted levels.
func WithDecrypter(dec Decrypter) Option {
	return func(o *options) { o.decrypter = dec }
}

// WithPacks controls whether multi-level packs are accepted.
func WithPacks(allow bool) Option {
	return func(o *options) { o.allowPack = allow }
}

// WithSource sets where the level and its companion files are read from.
func WithSource(src files.Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// Load reads and decodes the level at path. A compression suffix on path
// is not part of the level name.
func Load(path string, opts ...Option) (*Level, error) {
	o := newOptions(opts)
	data, err := o.source.LoadBytes(path)
	if err != nil {
		return nil, &LoadError{Filename: path, Err: err}
	}
	return load(files.TrimCompression(path), data, o, o.allowPack)
}

// LoadBytes decodes a level already in memory. name is used for extension
// based detection and to find companion files. data is not modified.
func LoadBytes(name string, data []byte, opts ...Option) (*Level, error) {
	o := newOptions(opts)
	return load(name, bytes.Clone(data), o, o.allowPack)
}

// IsEncrypted reports whether data starts with the encrypted version marker.
func IsEncrypted(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == EncryptedVersion
}

// decodeFunc is one committed structural decoder.
type decodeFunc func(d *decoder) error

// decoder is the state of one load.
type decoder struct {
	level *Level
	pv    PlatformAndVersion
	log   *zap.Logger
	opts  *options
	name  string
	data  []byte

	meshData  []byte
	meshOrder binary.ByteOrder
	samples   sampleSource
}

func load(name string, buf []byte, o *options, allowPack bool) (*Level, error) {
	log := o.log.Named("Level")
	fail := func(pv PlatformAndVersion, err error) (*Level, error) {
		raw := pv.RawVersion
		if raw == 0 && len(buf) >= 4 {
			raw = binary.LittleEndian.Uint32(buf)
		}
		return nil, &LoadError{Filename: name, PV: pv, RawVersion: raw, Err: err}
	}

	if IsEncrypted(buf) {
		log.Info("Level is encrypted")
		if err := decrypt(buf, o.decrypter); err != nil {
			return fail(PlatformAndVersion{RawVersion: EncryptedVersion}, err)
		}
		log.Info("Decrypted level")
	}

	pv := detect(NewCursor(buf), name, o.source.Exists, allowPack)
	if !pv.IsKnown() {
		return fail(pv, ErrUnknownVersion)
	}
	log.Info("Detected level", zap.Stringer("variant", pv), zap.Int("size", len(buf)))
	o.callbacks.OnProgress(fmt.Sprintf("Loading %s", pv))

	decode, err := decoderFor(pv)
	if err != nil {
		return fail(pv, err)
	}

	d := &decoder{
		level:     newLevel(name, pv),
		pv:        pv,
		log:       log,
		opts:      o,
		name:      name,
		data:      buf,
		meshOrder: binary.LittleEndian,
	}
	if err := decode(d); err != nil {
		return fail(pv, err)
	}
	if pv.IsPack {
		return d.level, nil
	}
	if err := d.finish(); err != nil {
		return fail(pv, err)
	}
	log.Info("Loaded level",
		zap.Int("rooms", len(d.level.rooms)),
		zap.Int("entities", len(d.level.entities)),
		zap.Int("meshes", len(d.level.meshes)),
		zap.Int("samples", len(d.level.samples)))
	return d.level, nil
}

func decrypt(buf []byte, dec Decrypter) error {
	if dec == nil {
		return ErrEncrypted
	}
	if err := dec.DecryptInPlace(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrEncrypted, err)
	}
	if IsEncrypted(buf) {
		return fmt.Errorf("%w: marker still present after decryption", ErrEncrypted)
	}
	return nil
}

// step is one section of a variant's layout.
type step struct {
	activity string
	read     func(c *Cursor) error
}

// run reads sections in order. The order is what distinguishes variants.
func (d *decoder) run(c *Cursor, steps []step) error {
	for _, s := range steps {
		if err := d.opts.ctx.Err(); err != nil {
			return err
		}
		if s.activity != "" {
			d.progress(s.activity)
			d.log.Debug(s.activity, posField(c))
		}
		if err := s.read(c); err != nil {
			if s.activity == "" {
				return err
			}
			return fmt.Errorf("%s: %w", strings.ToLower(s.activity), err)
		}
	}
	return nil
}

func (d *decoder) progress(msg string) {
	d.opts.callbacks.OnProgress(msg)
}

func posField(c *Cursor) zap.Field {
	return zap.Int("position", c.Pos())
}

// finish resolves everything that depends on more than one section.
func (d *decoder) finish() error {
	l := d.level

	d.progress("Decoding meshes")
	cache := newMeshCache(d.meshData, d.meshOrder, meshLayoutFor(d.pv))
	for i, p := range l.meshPointers {
		if _, err := cache.get(p); err != nil {
			return fmt.Errorf("mesh pointer %d: %w", i, err)
		}
	}
	l.meshes = cache.meshes
	l.meshDecodes = cache.decodes
	l.meshDataSize = len(d.meshData)
	d.log.Debug("Decoded meshes",
		zap.Int("pointers", len(l.meshPointers)),
		zap.Int("unique", len(cache.unique)))

	clamp := textureClamp{count: len(l.objectTextures)}
	for i := range l.rooms {
		clampRoomTextures(&l.rooms[i], &clamp)
	}
	for _, mesh := range cache.unique {
		clampMeshTextures(mesh, &clamp)
	}
	if clamp.clamped > 0 {
		d.log.Warn("Clamped out of range texture indices",
			zap.Int("faces", clamp.clamped),
			zap.Int("textures", clamp.count))
	}

	d.progress("Generating sector flags")
	deriveSectorFlags(l.rooms, l.floorData, d.pv.Version)

	l.roomVisible = make([]bool, len(l.rooms))
	for i := range l.roomVisible {
		l.roomVisible[i] = true
	}

	for i, t := range l.textiles {
		d.opts.callbacks.OnTextile(i, t.Width, t.Height, l.textileRGBA(t))
	}

	d.progress("Loading sounds")
	d.resolveSounds()
	return nil
}

// companion returns path with its extension replaced by ext.
func companion(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// hasExt reports whether path has extension ext, ignoring case.
func hasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
