package ipa

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/utils"
	"github.com/disintegration/imaging"
)

// SelectIcon normalizes the first icon candidate that decoder accepts and
// moves it to iconPath. Candidates are tried in descending path order, as
// the larger renditions (icon@2x, icon@3x, ...) sort last. The decoder is
// run with the candidate path appended and is expected to rewrite Apple's
// CgBI PNG in place as a standard PNG.
func SelectIcon(runner Runner, decoder []string, candidates []string, iconPath string) (string, bool) {
	if len(decoder) == 0 || len(candidates) == 0 {
		return "", false
	}

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	for i := len(sorted) - 1; i >= 0; i-- {
		args := append(append([]string(nil), decoder[1:]...), sorted[i])
		if err := runner.Run(decoder[0], args...); err != nil {
			utils.Indent(log.WithError(err).Debug, 2)(fmt.Sprintf("Failed to decode %s", sorted[i]))
			continue
		}
		if err := os.Rename(sorted[i], iconPath); err != nil {
			utils.Indent(log.WithError(err).Warn, 2)(fmt.Sprintf("Failed to move decoded icon %s", sorted[i]))
			continue
		}
		return iconPath, true
	}

	utils.Indent(log.Warn, 2)("None of the icon candidates could be decoded")
	return "", false
}

// CheckDecoder reports whether the decoder command can be found and whether
// the script it is given exists. Relative script paths are resolved against
// the working directory.
func CheckDecoder(decoder []string) error {
	if len(decoder) == 0 {
		return fmt.Errorf("no icon decoder configured")
	}
	if _, err := exec.LookPath(decoder[0]); err != nil {
		return fmt.Errorf("icon decoder %s not found: %w", decoder[0], err)
	}
	for _, arg := range decoder[1:] {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if filepath.Ext(arg) != ".py" && !strings.ContainsRune(arg, filepath.Separator) {
			continue
		}
		if _, err := os.Stat(arg); err != nil {
			return fmt.Errorf("icon decoder script %s not found: %w", arg, err)
		}
	}
	return nil
}

// Icon is the app's normalized icon
type Icon struct {
	Path   string
	Image  image.Image
	Width  int
	Height int
}

// LoadIcon opens a decoded icon
func LoadIcon(path string) (*Icon, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon %s: %w", path, err)
	}
	b := img.Bounds()
	return &Icon{
		Path:   path,
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// Thumbnail returns the icon scaled to fit a size x size box. Icons that
// already fit are returned unchanged.
func (i *Icon) Thumbnail(size int) image.Image {
	if size <= 0 || (i.Width <= size && i.Height <= size) {
		return i.Image
	}
	return imaging.Fit(i.Image, size, size, imaging.Lanczos)
}

// Save writes the icon, scaled to size when size > 0, as a PNG
func (i *Icon) Save(path string, size int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := imaging.Encode(f, i.Thumbnail(size), imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("failed to encode icon to %s: %w", path, err)
	}
	return nil
}
