package ipa

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/ipainfo/internal/utils"
	"github.com/pkg/errors"
)

var extractPatterns = []string{"*.png", InfoPlistName, "*.mobileprovision"}

// ExtractionResult holds the top-level paths of the artifacts pulled out of an IPA
type ExtractionResult struct {
	PlistPath string
	// ProvisionPath is empty when the app has no embedded provisioning profile
	ProvisionPath  string
	IconCandidates []string
}

// Extractor unpacks the interesting parts of an IPA into a cache directory
// using external tools.
type Extractor struct {
	runner      Runner
	cache       *Cache
	archiveTool string
	moveTool    string
}

// NewExtractor creates an Extractor. cache provides the staging folders
// used while relocating images.
func NewExtractor(runner Runner, cache *Cache, archiveTool, moveTool string) *Extractor {
	return &Extractor{
		runner:      runner,
		cache:       cache,
		archiveTool: archiveTool,
		moveTool:    moveTool,
	}
}

// Extract unpacks archive into dir, renames the .app bundle to a canonical
// name and moves Info.plist, the provisioning profile and the PNG images to
// the top of dir. Only image relocation is allowed to fail.
func (x *Extractor) Extract(archive, dir string) (*ExtractionResult, error) {
	log.WithField("dir", dir).Info("Extracting IPA")

	args := []string{"x", archive, "-aoa", "-o" + dir}
	args = append(args, extractPatterns...)
	args = append(args, "-r")
	if err := x.runner.Run(x.archiveTool, args...); err != nil {
		return nil, &ExtractionError{Op: "unpack", Err: err}
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, &ExtractionError{Op: "unpack", Err: errors.Errorf("failed to extract IPA to folder %s", dir)}
	}

	bundle, err := findBundle(filepath.Join(dir, PayloadDir))
	if err != nil {
		return nil, &ExtractionError{Op: "locate bundle", Err: err}
	}

	// the original name may hold spaces or quotes that break later commands
	canonical := filepath.Join(dir, PayloadDir, CanonicalBundleName)
	if bundle != canonical {
		utils.Indent(log.Debug, 2)(fmt.Sprintf("Renaming %s to %s", filepath.Base(bundle), CanonicalBundleName))
		if err := x.runner.Run(x.moveTool, bundle, canonical); err != nil {
			return nil, &ExtractionError{Op: "rename bundle", Err: err}
		}
	}

	res := &ExtractionResult{
		PlistPath: filepath.Join(dir, InfoPlistName),
	}

	if err := os.Rename(filepath.Join(canonical, InfoPlistName), res.PlistPath); err != nil {
		return nil, &ExtractionError{Op: "relocate " + InfoPlistName, Err: err}
	}

	src := filepath.Join(canonical, ProvisionName)
	if _, err := os.Stat(src); err == nil {
		dst := filepath.Join(dir, ProvisionName)
		if err := os.Rename(src, dst); err != nil {
			return nil, &ExtractionError{Op: "relocate " + ProvisionName, Err: err}
		}
		res.ProvisionPath = dst
	} else if !os.IsNotExist(err) {
		return nil, &ExtractionError{Op: "relocate " + ProvisionName, Err: err}
	} else {
		utils.Indent(log.Debug, 2)("No embedded provisioning profile")
	}

	if err := x.relocateImages(canonical, dir); err != nil {
		utils.Indent(log.WithError(err).Warn, 2)("Failed to relocate images")
	}

	res.IconCandidates, err = iconCandidates(dir)
	if err != nil {
		utils.Indent(log.WithError(err).Warn, 2)("Failed to list icon candidates")
	}

	return res, nil
}

// findBundle returns the only .app directory in payload
func findBundle(payload string) (string, error) {
	des, err := os.ReadDir(payload)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", payload)
	}
	var apps []string
	for _, de := range des {
		if de.IsDir() && strings.EqualFold(filepath.Ext(de.Name()), ".app") {
			apps = append(apps, filepath.Join(payload, de.Name()))
		}
	}
	switch len(apps) {
	case 0:
		return "", ErrBundleNotFound
	case 1:
		return apps[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousBundle, strings.Join(apps, ", "))
	}
}

// relocateImages moves the PNGs at the root of bundle and dir into dir.
// The files go through a private staging folder first because mv refuses
// to move a file onto itself. mv may move some files before it fails, so
// whatever reached the staging folder is always moved on to dir.
func (x *Extractor) relocateImages(bundle, dir string) error {
	var pngs []string
	for _, d := range []string{bundle, dir} {
		matches, err := filepath.Glob(filepath.Join(d, "*.png"))
		if err != nil {
			return err
		}
		pngs = append(pngs, matches...)
	}
	if len(pngs) == 0 {
		return nil
	}

	staging, cleanup, err := x.cache.Stage()
	if err != nil {
		return err
	}
	defer cleanup()

	var stageErr error
	if err := x.runner.Run(x.moveTool, append(pngs, staging)...); err != nil {
		stageErr = errors.Wrap(err, "failed to stage images")
		utils.Indent(log.WithError(err).Debug, 2)("Moving back the images that were staged")
	}
	staged, err := filepath.Glob(filepath.Join(staging, "*.png"))
	if err != nil {
		return err
	}
	if len(staged) > 0 {
		if err := x.runner.Run(x.moveTool, append(staged, dir)...); err != nil {
			return errors.Wrap(err, "failed to move staged images")
		}
	}
	return stageErr
}

func iconCandidates(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, m := range matches {
		if filepath.Base(m) != AppIconName {
			candidates = append(candidates, m)
		}
	}
	sort.Strings(candidates)
	return candidates, nil
}
