package manifest

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// Section names.
const (
	SectionApp       = "app"
	SectionBuildozer = "buildozer"
)

// Manifest is a parsed buildozer.spec.
type Manifest struct {
	App       AppSection       `ini:"app"`
	Buildozer BuildozerSection `ini:"buildozer"`

	hasApp  bool
	unknown []Finding
}

// AppSection holds package identity, bundled files, runtime requirements,
// presentation hints and install-time permissions.
type AppSection struct {
	Title              string   `ini:"title" validate:"required"`
	PackageName        string   `ini:"package.name" validate:"required,pkgname"`
	PackageDomain      string   `ini:"package.domain" validate:"required,pkgdomain"`
	SourceDir          string   `ini:"source.dir" validate:"required"`
	SourceIncludeExts  []string `ini:"source.include_exts" delim:"," validate:"dive,required,alphanum"`
	Requirements       []string `ini:"requirements" delim:"," validate:"min=1,dive,required,requirement"`
	Orientation        string   `ini:"orientation" validate:"omitempty,oneof=portrait landscape all sensorPortrait sensorLandscape portrait-reverse landscape-reverse"`
	Fullscreen         int      `ini:"fullscreen" validate:"oneof=0 1"`
	AndroidPermissions []string `ini:"android.permissions" delim:"," validate:"dive,required,permission"`
}

// BuildozerSection holds build-tool diagnostics settings.
type BuildozerSection struct {
	LogLevel   int `ini:"log_level" validate:"min=0,max=2"`
	WarnOnRoot int `ini:"warn_on_root" validate:"oneof=0 1"`
}

var knownKeys = map[string][]string{
	SectionApp: {
		"title", "package.name", "package.domain", "source.dir", "source.include_exts",
		"requirements", "orientation", "fullscreen", "android.permissions",
	},
	SectionBuildozer: {"log_level", "warn_on_root"},
}

var loadOptions = ini.LoadOptions{
	AllowPythonMultilineValues: true,
	IgnoreInlineComment:        true,
}

// Default returns the manifest the chat app ships with.
func Default() *Manifest {
	return &Manifest{
		App: AppSection{
			Title:              "Realtime Chat",
			PackageName:        "realtimechat",
			PackageDomain:      "org.rechat",
			SourceDir:          ".",
			SourceIncludeExts:  []string{"py", "png", "jpg", "kv", "atlas", "json"},
			Requirements:       []string{"python3", "kivy", "pillow"},
			Orientation:        "portrait",
			Fullscreen:         0,
			AndroidPermissions: []string{"INTERNET", "READ_EXTERNAL_STORAGE"},
		},
		Buildozer: BuildozerSection{LogLevel: 2, WarnOnRoot: 1},
		hasApp:    true,
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(b)
}

// Parse parses manifest source. Syntax errors and values of the wrong type
// are returned as errors; everything else is left to Validate.
func Parse(data []byte) (*Manifest, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}

	m := &Manifest{Buildozer: BuildozerSection{LogLevel: 1, WarnOnRoot: 1}}
	if sec, err := f.GetSection(SectionApp); err == nil {
		m.hasApp = true
		if err := sec.StrictMapTo(&m.App); err != nil {
			return nil, fmt.Errorf("manifest: [%s]: %w", SectionApp, err)
		}
	}
	if sec, err := f.GetSection(SectionBuildozer); err == nil {
		if err := sec.StrictMapTo(&m.Buildozer); err != nil {
			return nil, fmt.Errorf("manifest: [%s]: %w", SectionBuildozer, err)
		}
	}
	m.App.SourceIncludeExts = cleanList(m.App.SourceIncludeExts)
	m.App.Requirements = cleanList(m.App.Requirements)
	m.App.AndroidPermissions = cleanList(m.App.AndroidPermissions)

	for _, sec := range f.Sections() {
		known, ok := knownKeys[sec.Name()]
		for _, key := range sec.Keys() {
			if ok && slices.Contains(known, key.Name()) {
				continue
			}
			m.unknown = append(m.unknown, Finding{
				Severity: SeverityWarning,
				Section:  sec.Name(),
				Key:      key.Name(),
				Message:  "unrecognized key",
			})
		}
	}
	return m, nil
}

// Encode writes m in manifest syntax.
func (m *Manifest) Encode(w io.Writer) error {
	f := ini.Empty(loadOptions)

	app, err := f.NewSection(SectionApp)
	if err != nil {
		return err
	}
	for _, kv := range [][2]string{
		{"title", m.App.Title},
		{"package.name", m.App.PackageName},
		{"package.domain", m.App.PackageDomain},
		{"source.dir", m.App.SourceDir},
		{"source.include_exts", strings.Join(m.App.SourceIncludeExts, ",")},
		{"requirements", strings.Join(m.App.Requirements, ",")},
		{"orientation", m.App.Orientation},
		{"fullscreen", strconv.Itoa(m.App.Fullscreen)},
		{"android.permissions", strings.Join(m.App.AndroidPermissions, ",")},
	} {
		if _, err := app.NewKey(kv[0], kv[1]); err != nil {
			return err
		}
	}

	bz, err := f.NewSection(SectionBuildozer)
	if err != nil {
		return err
	}
	if _, err := bz.NewKey("log_level", strconv.Itoa(m.Buildozer.LogLevel)); err != nil {
		return err
	}
	if _, err := bz.NewKey("warn_on_root", strconv.Itoa(m.Buildozer.WarnOnRoot)); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

// HasPermission reports whether perm is requested, with or without the
// android.permission. prefix.
func (m *Manifest) HasPermission(perm string) bool {
	for _, p := range m.App.AndroidPermissions {
		if strings.TrimPrefix(p, "android.permission.") == strings.TrimPrefix(perm, "android.permission.") {
			return true
		}
	}
	return false
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
