// trtool is a CLI utility for inspecting Tomb Raider level files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"

	"github.com/lahm86/trview-sub000/internal/config"
	"github.com/lahm86/trview-sub000/internal/logger"
	"github.com/lahm86/trview-sub000/pkg/crypt"
	"github.com/lahm86/trview-sub000/pkg/files"
	"github.com/lahm86/trview-sub000/pkg/trlevel"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	var cmdErr error
	switch command {
	case "detect":
		cmdErr = cmdDetect(cfg, args)
	case "info":
		cmdErr = cmdInfo(cfg, args)
	case "rooms":
		cmdErr = cmdRooms(cfg, args)
	case "entities":
		cmdErr = cmdEntities(cfg, args)
	case "sounds":
		cmdErr = cmdSounds(cfg, args)
	case "textiles":
		cmdErr = cmdTextiles(cfg, args)
	case "list", "ls":
		cmdErr = cmdList(args)
	case "config":
		cmdErr = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trtool - Tomb Raider level utility

Usage:
  trtool [flags] <command> [arguments]

Commands:
  detect <level>...          Show the detected platform and version
  info <level>...            Decode levels and show a summary
  rooms <level>              List rooms with geometry and sector counts
  entities <level>           List placed entities
  sounds <level>             List reachable samples (-sounds writes them to -out)
  textiles <level>           Write textiles as BMP files to -out
  list <archive>             List level files inside a zip, 7z or rar archive
  config [save [file]]       Show the effective settings, or save them

Levels may be plain files, .xz or .zst compressed files, or paths into an
archive such as levels.zip/DATA/LEVEL1.PHD.

Flags:
  -config <file>   Config file (default ./config.yaml)
  -debug           Debug logging
  -workers <n>     Levels decoded at once
  -key <hex>       Key for encrypted levels
  -out <dir>       Output directory
  -timeout <d>     Per-level decode limit

Examples:
  trtool detect data/*.PHD
  trtool -workers 8 info data/*.TR2
  trtool -out textiles textiles levels.zip/DATA/LEVEL1.PHD
  trtool -key 0011aabb info encrypted.tr4
  trtool -workers 8 -timeout 30s config save`)
}

// loadOptions builds the decode options shared by every command.
func loadOptions(cfg *config.Config, name string, cb trlevel.Callbacks) ([]trlevel.Option, context.CancelFunc, error) {
	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if cfg.Load.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Load.Timeout)
	}
	opts := []trlevel.Option{
		trlevel.WithContext(ctx),
		trlevel.WithLogger(logger.Named(filepath.Base(name))),
		trlevel.WithPacks(cfg.Load.AllowPack),
	}
	if cb != nil {
		opts = append(opts, trlevel.WithCallbacks(cb))
	}
	if cfg.Crypt.Key != "" {
		c, err := crypt.NewFromHex(cfg.Crypt.Key)
		if err != nil {
			cancel()
			return nil, nil, err
		}
		opts = append(opts, trlevel.WithDecrypter(c))
	}
	return opts, cancel, nil
}

func openLevel(cfg *config.Config, path string, cb trlevel.Callbacks) (*trlevel.Level, time.Duration, error) {
	opts, cancel, err := loadOptions(cfg, path, cb)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()
	start := time.Now()
	level, err := trlevel.Load(path, opts...)
	return level, time.Since(start), err
}

// describeError turns load failures into a short explanation.
func describeError(err error) string {
	switch {
	case errors.Is(err, trlevel.ErrEncrypted):
		return fmt.Sprintf("encrypted, pass -key (%v)", err)
	case errors.Is(err, trlevel.ErrUnsupportedVariant):
		return fmt.Sprintf("unsupported variant (%v)", err)
	case errors.Is(err, trlevel.ErrUnknownVersion):
		return fmt.Sprintf("not a level (%v)", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case files.IsNotExist(err):
		return fmt.Sprintf("not found (%v)", err)
	default:
		return err.Error()
	}
}

// forEach runs fn over paths with at most workers at once and prints the
// results in argument order.
func forEach(workers int, paths []string, fn func(path string) string) {
	results := make([]string, len(paths))
	wg := sizedwaitgroup.New(workers)
	for i, path := range paths {
		wg.Add()
		go func(i int, path string) {
			defer wg.Done()
			results[i] = fn(path)
		}(i, path)
	}
	wg.Wait()
	for _, r := range results {
		fmt.Println(r)
	}
}

func cmdDetect(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: trtool detect <level>...")
	}
	forEach(cfg.Load.Workers, args, func(path string) string {
		data, err := files.Disk{}.LoadBytes(path)
		if err != nil {
			return fmt.Sprintf("%s: %s", path, describeError(err))
		}
		pv := trlevel.Detect(files.TrimCompression(path), data)
		if trlevel.IsEncrypted(data) {
			return fmt.Sprintf("%s: encrypted (raw version 0x%08X)", path, pv.RawVersion)
		}
		return fmt.Sprintf("%s: %s (raw version 0x%08X, %s)", path, pv, pv.RawVersion, humanize.Bytes(uint64(len(data))))
	})
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: trtool info <level>...")
	}
	forEach(cfg.Load.Workers, args, func(path string) string {
		level, took, err := openLevel(cfg, path, nil)
		if err != nil {
			logger.Warn("Load failed", zap.String("path", path), zap.Error(err))
			return fmt.Sprintf("%s: %s", path, describeError(err))
		}
		return summarize(level, took)
	})
	return nil
}

func summarize(l *trlevel.Level, took time.Duration) string {
	var b strings.Builder
	pv := l.PlatformAndVersion()
	fmt.Fprintf(&b, "Level:      %s\n", l.Name())
	fmt.Fprintf(&b, "Variant:    %s\n", pv)
	fmt.Fprintf(&b, "Decoded in: %s\n", durafmt.Parse(took).LimitFirstN(2).Format(shortUnits))
	fmt.Fprintf(&b, "Rooms:      %d\n", l.NumRooms())
	fmt.Fprintf(&b, "Entities:   %d (%d AI objects)\n", l.NumEntities(), l.NumAIObjects())
	fmt.Fprintf(&b, "Models:     %d\n", l.NumModels())
	fmt.Fprintf(&b, "Statics:    %d\n", l.NumStaticMeshes())
	fmt.Fprintf(&b, "Meshes:     %d from %d pointers\n", l.NumMeshes(), l.NumMeshPointers())
	fmt.Fprintf(&b, "Textures:   %d object, %d sprite, %d textiles\n",
		l.NumObjectTextures(), len(l.SpriteTextures()), l.NumTextiles())
	fmt.Fprintf(&b, "Animations: %d\n", len(l.Animations()))
	fmt.Fprintf(&b, "Cameras:    %d fixed, %d flyby\n", len(l.Cameras()), len(l.FlybyCameras()))
	var sampleBytes int
	for _, s := range l.Samples() {
		sampleBytes += len(s)
	}
	fmt.Fprintf(&b, "Sounds:     %d details, %d samples (%s)",
		len(l.SoundDetails()), len(l.Samples()), humanize.Bytes(uint64(sampleBytes)))
	if pv.Version == trlevel.Tomb5 {
		fmt.Fprintf(&b, "\nLara type:  %d, weather %d", l.LaraType(), l.WeatherType())
	}
	return b.String()
}

func cmdRooms(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: trtool rooms <level>")
	}
	level, _, err := openLevel(cfg, args[0], nil)
	if err != nil {
		return errors.New(describeError(err))
	}
	fmt.Printf("%-5s %-22s %6s %6s %6s %7s %s\n", "Room", "Position", "Verts", "Tris", "Portal", "Sectors", "Flags")
	for i := 0; i < level.NumRooms(); i++ {
		room, _ := level.Room(i)
		climb, death, trigger := 0, 0, 0
		for _, s := range room.Sectors {
			if s.Flags&trlevel.SectorClimbable != 0 {
				climb++
			}
			if s.Flags.Has(trlevel.SectorDeath) {
				death++
			}
			if s.Flags.Has(trlevel.SectorTrigger) {
				trigger++
			}
		}
		pos := fmt.Sprintf("%d,%d", room.Info.X, room.Info.Z)
		flags := fmt.Sprintf("climb %d, death %d, trigger %d", climb, death, trigger)
		if room.AlternateRoom >= 0 {
			flags += fmt.Sprintf(", alternate %d", room.AlternateRoom)
		}
		fmt.Printf("%-5d %-22s %6d %6d %6d %7d %s\n", i, pos, len(room.Vertices), len(room.Geometry),
			len(room.Portals), len(room.Sectors), flags)
	}
	return nil
}

func cmdEntities(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: trtool entities <level>")
	}
	level, _, err := openLevel(cfg, args[0], nil)
	if err != nil {
		return errors.New(describeError(err))
	}
	fmt.Printf("%-5s %-6s %-5s %-26s %s\n", "Index", "Type", "Room", "Position", "Model")
	for i := 0; i < level.NumEntities(); i++ {
		e, _ := level.Entity(i)
		model := "-"
		if m, ok := level.ModelByID(uint32(e.TypeID)); ok {
			model = fmt.Sprintf("%d meshes", m.NumMeshes)
		}
		fmt.Printf("%-5d %-6d %-5d %-26s %s\n", i, e.TypeID, e.Room, fmt.Sprintf("%d,%d,%d", e.X, e.Y, e.Z), model)
	}
	return nil
}

func cmdSounds(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: trtool sounds <level>")
	}
	var exp *sampleExporter
	var cb trlevel.Callbacks
	if cfg.Sound.Extract {
		exp = &sampleExporter{dir: cfg.Export.Dir}
		cb = trlevel.CallbackFuncs{SoundSample: exp.write}
	}
	level, _, err := openLevel(cfg, args[0], cb)
	if err != nil {
		return errors.New(describeError(err))
	}
	samples := level.Samples()
	indices := make([]int, 0, len(samples))
	for i := range samples {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		fmt.Printf("sample %-5d %s\n", i, humanize.Bytes(uint64(len(samples[i]))))
	}
	if exp != nil {
		if exp.err != nil {
			return exp.err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d samples to %s\n", exp.count, cfg.Export.Dir)
	}
	return nil
}

func cmdTextiles(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: trtool textiles <level>")
	}
	exp := &textileExporter{dir: cfg.Export.Dir, prefix: strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))}
	cb := trlevel.CallbackFuncs{
		Textile:  exp.write,
		Progress: func(msg string) { logger.Debug(msg) },
	}
	if _, _, err := openLevel(cfg, args[0], cb); err != nil {
		return errors.New(describeError(err))
	}
	if exp.err != nil {
		return exp.err
	}
	fmt.Printf("Wrote %d textiles to %s\n", exp.count, cfg.Export.Dir)
	return nil
}

func cmdList(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: trtool list <archive>")
	}
	arc, err := files.Open(args[0])
	if err != nil {
		return err
	}
	defer arc.Close()
	list, err := arc.List()
	if err != nil {
		return err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	count := 0
	for _, f := range list {
		if !isLevelFile(f.Name) {
			continue
		}
		fmt.Printf("%-40s %s\n", f.Name, humanize.Bytes(uint64(f.Size)))
		count++
	}
	fmt.Fprintf(os.Stderr, "\n(%d levels)\n", count)
	return nil
}

var levelExtensions = []string{".phd", ".tub", ".tr2", ".tr4", ".trc", ".psx", ".sat", ".dat"}

func isLevelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(files.TrimCompression(name)))
	for _, e := range levelExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// cmdConfig prints the settings after defaults, file and flags have been
// merged. "save" writes them where Load will find them next time.
func cmdConfig(cfg *config.Config, args []string) error {
	switch {
	case len(args) == 0:
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case args[0] == "save" && len(args) <= 2:
		var path string
		var err error
		if len(args) == 2 {
			path, err = args[1], cfg.SaveTo(args[1])
		} else {
			path, err = cfg.Save()
		}
		if err != nil {
			return err
		}
		logger.Info("Saved config", zap.String("path", path))
		fmt.Printf("Wrote %s\n", path)
		return nil
	default:
		return errors.New("usage: trtool config [save [file]]")
	}
}
