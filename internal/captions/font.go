package captions

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// FileSystem is the slice of the OS the font lookup needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

// OSFileSystem reads the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (OSFileSystem) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

const (
	Darwin  = "darwin"
	Linux   = "linux"
	Windows = "windows"
)

var fontTable = map[Script]map[string][]string{
	Malayalam: {
		Darwin:  {"/System/Library/Fonts/Supplemental/Malayalam Sangam MN.ttc"},
		Linux:   {"/usr/share/fonts/truetype/noto/NotoSansMalayalam-Regular.ttf"},
		Windows: {`C:\Windows\Fonts\NirmalaB.ttf`},
	},
	Hindi: {
		Darwin:  {"/System/Library/Fonts/Supplemental/Devanagari Sangam MN.ttc"},
		Linux:   {"/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf"},
		Windows: {`C:\Windows\Fonts\NirmalaB.ttf`},
	},
	Arabic: {
		Darwin:  {"/System/Library/Fonts/Supplemental/Baghdad.ttf"},
		Linux:   {"/usr/share/fonts/truetype/noto/NotoSansArabic-Regular.ttf"},
		Windows: {`C:\Windows\Fonts\tahoma.ttf`},
	},
	Chinese: {
		Darwin:  {"/System/Library/Fonts/PingFang.ttc"},
		Linux:   {"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc", "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc"},
		Windows: {`C:\Windows\Fonts\msyh.ttc`},
	},
	Japanese: {
		Darwin:  {"/System/Library/Fonts/ヒラギノ角ゴシック W3.ttc"},
		Linux:   {"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc", "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc"},
		Windows: {`C:\Windows\Fonts\msmincho.ttc`},
	},
	Korean: {
		Darwin:  {"/System/Library/Fonts/AppleSDGothicNeo.ttc"},
		Linux:   {"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc", "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc"},
		Windows: {`C:\Windows\Fonts\malgun.ttf`},
	},
	Latin: {
		Darwin:  {"/System/Library/Fonts/Helvetica.ttc"},
		Linux:   {"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"},
		Windows: {`C:\Windows\Fonts\Arial.ttf`},
	},
}

var fallbackFonts = map[string][]string{
	Darwin: {
		"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
	},
	Linux: {
		"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	},
	Windows: {
		`C:\Windows\Fonts\seguisym.ttf`,
		`C:\Windows\Fonts\Arial.ttf`,
	},
}

// Candidates lists the font paths for (script, platform) in priority order,
// script-specific paths first, then the platform's generic fallbacks.
func Candidates(script Script, platform string) []string {
	perPlatform, ok := fontTable[script]
	if !ok {
		perPlatform = fontTable[Latin]
	}
	primary, ok := perPlatform[platform]
	if !ok {
		primary = fontTable[Latin][Darwin]
	}

	out := append([]string(nil), primary...)
	for _, p := range fallbackFonts[platform] {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// FontChoice is the outcome of a font lookup.
type FontChoice struct {
	Path     string
	Script   Script
	Exists   bool
	Fallback bool
}

// FontResolver evaluates candidate fonts against a filesystem.
type FontResolver struct {
	FS       FileSystem
	Platform string
}

// NewFontResolver returns a resolver over the real filesystem.
func NewFontResolver(platform string) *FontResolver {
	return &FontResolver{FS: OSFileSystem{}, Platform: platform}
}

// Resolve returns the first existing candidate. When nothing exists the
// primary path is returned with Exists=false and the engine reports the error.
func (r *FontResolver) Resolve(script Script) FontChoice {
	cands := Candidates(script, r.Platform)
	primaryCount := 1
	if table, ok := fontTable[script]; ok {
		if p, ok := table[r.Platform]; ok {
			primaryCount = len(p)
		}
	}

	for i, path := range cands {
		if info, err := r.FS.Stat(path); err == nil && !info.IsDir() {
			return FontChoice{Path: path, Script: script, Exists: true, Fallback: i >= primaryCount}
		}
	}
	return FontChoice{Path: cands[0], Script: script}
}

// ErrNoFace is returned for font data without a usable face.
var ErrNoFace = errors.New("font has no usable face")

// Covers reports whether the chosen font has a glyph for the script's sample
// character. Collections (.ttc/.otc) are checked on their first face.
func (r *FontResolver) Covers(choice FontChoice) (bool, error) {
	data, err := r.FS.ReadFile(choice.Path)
	if err != nil {
		return false, err
	}

	var f *sfnt.Font
	lower := strings.ToLower(choice.Path)
	if strings.HasSuffix(lower, ".ttc") || strings.HasSuffix(lower, ".otc") {
		c, err := sfnt.ParseCollection(data)
		if err != nil {
			return false, err
		}
		if c.NumFonts() == 0 {
			return false, ErrNoFace
		}
		if f, err = c.Font(0); err != nil {
			return false, err
		}
	} else if f, err = sfnt.Parse(data); err != nil {
		return false, err
	}

	var buf sfnt.Buffer
	idx, err := f.GlyphIndex(&buf, choice.Script.sampleRune())
	if err != nil {
		return false, err
	}
	return idx != 0, nil
}
