package occgrid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the YAML sidecar describing a saved grid, in the
// map_server convention. Origin is parsed for compatibility but
// ignored: grids are always centered on world (0, 0).
type Metadata struct {
	Image          string     `yaml:"image"`
	Resolution     float64    `yaml:"resolution"`
	Origin         [3]float64 `yaml:"origin,omitempty"`
	Negate         int        `yaml:"negate"`
	OccupiedThresh float64    `yaml:"occupied_thresh"`
	FreeThresh     float64    `yaml:"free_thresh"`
}

// Stock thresholds for maps saved without explicit ones.
const (
	DefaultOccupiedThresh = 0.65
	DefaultFreeThresh     = 0.196
)

// Saved pixel values, map_server convention: black is occupied, near
// white is free, gray is unknown.
const (
	pixelOccupied = 0
	pixelFree     = 254
	pixelUnknown  = 205
)

// Load reads a YAML metadata file and the PGM image it references
// (resolved relative to the YAML's directory) and builds the grid.
// Pixel occupancy probability is (255-v)/255, inverted when negate is
// set; probabilities above the occupied threshold become Occupied,
// below the free threshold Free, and anything between Unknown.
func Load(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map metadata: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing map metadata YAML: %w", err)
	}
	if meta.Image == "" {
		return nil, fmt.Errorf("map metadata %s: image is required", path)
	}
	if meta.Resolution <= 0 {
		return nil, fmt.Errorf("map metadata %s: resolution %g, want positive", path, meta.Resolution)
	}
	if meta.OccupiedThresh == 0 {
		meta.OccupiedThresh = DefaultOccupiedThresh
	}
	if meta.FreeThresh == 0 {
		meta.FreeThresh = DefaultFreeThresh
	}

	imagePath := meta.Image
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(path), imagePath)
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("opening map image: %w", err)
	}
	defer f.Close()

	width, height, maxVal, pixels, err := readPGM(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("reading map image %s: %w", imagePath, err)
	}

	g, err := New(width, height, meta.Resolution)
	if err != nil {
		return nil, err
	}
	for row := 0; row < height; row++ {
		// PGM rows run top to bottom; grid rows bottom to top.
		iy := height - row - 1
		for ix := 0; ix < width; ix++ {
			v := float64(pixels[row*width+ix]) / float64(maxVal)
			occ := 1 - v
			if meta.Negate != 0 {
				occ = v
			}
			switch {
			case occ > meta.OccupiedThresh:
				g.SetOccState(ix, iy, Occupied)
			case occ < meta.FreeThresh:
				g.SetOccState(ix, iy, Free)
			default:
				g.SetOccState(ix, iy, Unknown)
			}
		}
	}
	return g, nil
}

// Save writes the grid as a binary PGM next to the YAML metadata file,
// named after it with a .pgm extension.
func (g *Grid) Save(yamlPath string) error {
	imageName := strings.TrimSuffix(filepath.Base(yamlPath), filepath.Ext(yamlPath)) + ".pgm"
	imagePath := filepath.Join(filepath.Dir(yamlPath), imageName)

	meta := Metadata{
		Image:          imageName,
		Resolution:     g.scale,
		OccupiedThresh: DefaultOccupiedThresh,
		FreeThresh:     DefaultFreeThresh,
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshaling map metadata YAML: %w", err)
	}
	if err := os.WriteFile(yamlPath, data, 0644); err != nil {
		return fmt.Errorf("writing map metadata: %w", err)
	}

	f, err := os.Create(imagePath)
	if err != nil {
		return fmt.Errorf("creating map image: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P5\n%d %d\n255\n", g.sizeX, g.sizeY)
	for row := 0; row < g.sizeY; row++ {
		iy := g.sizeY - row - 1
		for ix := 0; ix < g.sizeX; ix++ {
			var pixel byte
			switch g.OccState(ix, iy) {
			case Occupied:
				pixel = pixelOccupied
			case Free:
				pixel = pixelFree
			default:
				pixel = pixelUnknown
			}
			w.WriteByte(pixel)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing map image: %w", err)
	}
	return f.Close()
}

// readPGM parses a P2 (ASCII) or P5 (binary) grayscale image with a
// max value of at most 255.
func readPGM(r *bufio.Reader) (width, height, maxVal int, pixels []byte, err error) {
	magic, err := pgmToken(r)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if magic != "P2" && magic != "P5" {
		return 0, 0, 0, nil, fmt.Errorf("unsupported PGM magic %q", magic)
	}

	if width, err = pgmInt(r); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("width: %w", err)
	}
	if height, err = pgmInt(r); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("height: %w", err)
	}
	if maxVal, err = pgmInt(r); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("max value: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, 0, nil, fmt.Errorf("bad dimensions %dx%d", width, height)
	}
	if maxVal <= 0 || maxVal > 255 {
		return 0, 0, 0, nil, fmt.Errorf("max value %d, want 1..255", maxVal)
	}

	pixels = make([]byte, width*height)
	if magic == "P5" {
		// The header's max value line ends in exactly one whitespace
		// byte, already consumed by pgmInt.
		if _, err := io.ReadFull(r, pixels); err != nil {
			return 0, 0, 0, nil, fmt.Errorf("pixel data: %w", err)
		}
		return width, height, maxVal, pixels, nil
	}
	for i := range pixels {
		v, err := pgmInt(r)
		if err != nil {
			return 0, 0, 0, nil, fmt.Errorf("pixel %d: %w", i, err)
		}
		if v < 0 || v > maxVal {
			return 0, 0, 0, nil, fmt.Errorf("pixel %d value %d out of range", i, v)
		}
		pixels[i] = byte(v)
	}
	return width, height, maxVal, pixels, nil
}

// pgmToken returns the next whitespace-delimited token, skipping
// comment lines introduced by '#'.
func pgmToken(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		switch {
		case b == '#':
			if _, err := r.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			if sb.Len() > 0 {
				return sb.String(), nil
			}
		default:
			sb.WriteByte(b)
		}
	}
}

func pgmInt(r *bufio.Reader) (int, error) {
	tok, err := pgmToken(r)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-numeric token %q", tok)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
