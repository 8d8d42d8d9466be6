// Package mapcal loads per-map calibration data: the affine transform from
// raw game-space coordinates to image-space pixels, the minimap's pixel
// dimensions, and the map's named callout regions.
package mapcal

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Location is a callout's anchor point in game space.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Callout is one named region on a map.
type Callout struct {
	RegionName      string   `json:"regionName"`
	SuperRegionName string   `json:"superRegionName"`
	Location        Location `json:"location"`
}

// Calibration converts game-space coordinates to image-space pixels for
// one map. The transform swaps axes: the game's y drives the image's x.
type Calibration struct {
	XMultiplier  float64 `json:"xMultiplier"`
	YMultiplier  float64 `json:"yMultiplier"`
	XScalarToAdd float64 `json:"xScalarToAdd"`
	YScalarToAdd float64 `json:"yScalarToAdd"`

	// ImageWidth/ImageHeight may be given in the JSON; otherwise they are
	// read from the map image next to it.
	ImageWidth  int `json:"imageWidth,omitempty"`
	ImageHeight int `json:"imageHeight,omitempty"`

	Callouts []Callout `json:"callouts,omitempty"`

	ImagePath string `json:"-"`
}

// GameToImage maps a game-space position to image-space pixels.
func (c *Calibration) GameToImage(gx, gy float64) (float64, float64) {
	x := gy*c.XMultiplier + c.XScalarToAdd
	y := gx*c.YMultiplier + c.YScalarToAdd
	return x * float64(c.ImageWidth), y * float64(c.ImageHeight)
}

// InBounds reports whether the projected position falls within the image,
// allowing tolerance pixels of slack on every edge.
func (c *Calibration) InBounds(gx, gy, tolerance float64) bool {
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return true
	}
	ix, iy := c.GameToImage(gx, gy)
	return ix >= -tolerance && ix <= float64(c.ImageWidth)+tolerance &&
		iy >= -tolerance && iy <= float64(c.ImageHeight)+tolerance
}

// Load reads a calibration JSON. When the JSON omits image dimensions, the
// first "<map>_*.png" next to it provides them.
func Load(jsonPath string) (*Calibration, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read map json: %w", err)
	}
	cal := &Calibration{}
	if err := json.Unmarshal(raw, cal); err != nil {
		return nil, fmt.Errorf("%s: %w", jsonPath, err)
	}

	if cal.ImageWidth <= 0 || cal.ImageHeight <= 0 {
		dir := filepath.Dir(jsonPath)
		pattern := filepath.Join(dir, filepath.Base(dir)+"_*.png")
		matches, _ := filepath.Glob(pattern)
		if len(matches) == 0 {
			return nil, fmt.Errorf("no map image found in %s", dir)
		}
		sort.Strings(matches)
		cal.ImagePath = matches[0]
		w, h, err := imageSize(cal.ImagePath)
		if err != nil {
			return nil, err
		}
		cal.ImageWidth, cal.ImageHeight = w, h
	}
	return cal, nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open map image: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode map image %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Store resolves calibrations by map name under a MapData root directory,
// caching results. A map with no calibration resolves to nil: sampling
// then simply skips the image-bounds check and image coordinates.
type Store struct {
	root  string
	cache map[string]*Calibration
}

// NewStore returns a Store over root (a MapData directory).
func NewStore(root string) *Store {
	return &Store{root: root, cache: make(map[string]*Calibration)}
}

// Lookup finds the calibration for mapName, matching the map folder
// case-insensitively. Missing or unreadable calibrations yield nil.
func (s *Store) Lookup(mapName string) *Calibration {
	if mapName == "" {
		return nil
	}
	key := strings.ToLower(mapName)
	if cal, ok := s.cache[key]; ok {
		return cal
	}
	cal := s.resolve(mapName)
	s.cache[key] = cal
	return cal
}

func (s *Store) resolve(mapName string) *Calibration {
	direct := filepath.Join(s.root, mapName, mapName+".json")
	if _, err := os.Stat(direct); err == nil {
		if cal, err := Load(direct); err == nil {
			return cal
		}
		return nil
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil
	}
	target := strings.ToLower(mapName)
	for _, entry := range entries {
		if !entry.IsDir() || strings.ToLower(entry.Name()) != target {
			continue
		}
		candidate := filepath.Join(s.root, entry.Name(), entry.Name()+".json")
		if cal, err := Load(candidate); err == nil {
			return cal
		}
	}
	return nil
}
