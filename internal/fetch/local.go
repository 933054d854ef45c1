// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/fitsolutions/edgar-engine/pkg/types"
)

// metadataSuffix names the per-filing YAML record written next to the
// downloaded documents.
const metadataSuffix = "_filing.yaml"

// writeMetadata records the filing identity next to its documents.
func writeMetadata(filing types.Filing) error {
	data, err := yaml.Marshal(filing)
	if err != nil {
		return fmt.Errorf("marshaling filing record: %w", err)
	}
	return os.WriteFile(metadataPath(filing.InstancePath), data, 0o644)
}

// readMetadata loads a filing record written by writeMetadata.
func readMetadata(path string) (types.Filing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Filing{}, err
	}
	var filing types.Filing
	if err := yaml.Unmarshal(data, &filing); err != nil {
		return types.Filing{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return filing, nil
}

func metadataPath(instancePath string) string {
	return strings.TrimSuffix(instancePath, filepath.Ext(instancePath)) + metadataSuffix
}

// LocalFilings discovers filing triples on local storage. Each argument
// is a directory (scanned non-recursively for instance documents) or an
// instance document path. Filings fetched by this tool are restored from
// their metadata records; anything else is paired by the EDGAR naming
// convention (<base>.xml with <base>_pre.xml and optional <base>_lab.xml
// siblings).
func LocalFilings(paths []string) ([]types.Filing, error) {
	var filings []types.Filing
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			filing, err := localFiling(p)
			if err != nil {
				return nil, err
			}
			filings = append(filings, filing)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			if !isInstanceName(name) {
				continue
			}
			filing, err := localFiling(filepath.Join(p, name))
			if err != nil {
				return nil, err
			}
			filings = append(filings, filing)
		}
	}
	return filings, nil
}

// localFiling builds a Filing for one instance document path.
func localFiling(instancePath string) (types.Filing, error) {
	if meta := metadataPath(instancePath); fileExists(meta) {
		filing, err := readMetadata(meta)
		if err == nil {
			return filing, nil
		}
		// Fall through to convention pairing on a corrupt record.
	}

	base := strings.TrimSuffix(instancePath, filepath.Ext(instancePath))
	// Inline-XBRL instance documents are named <base>_htm.xml while
	// their linkbases drop the _htm marker.
	base = strings.TrimSuffix(base, "_htm")

	filing := types.Filing{
		Ticker:           tickerFromDir(instancePath),
		InstancePath:     instancePath,
		PresentationPath: base + "_pre.xml",
	}
	if !fileExists(filing.PresentationPath) {
		return types.Filing{}, fmt.Errorf("no presentation linkbase for %s", instancePath)
	}
	if lab := base + "_lab.xml"; fileExists(lab) {
		filing.LabelPath = lab
	}
	return filing, nil
}

// isInstanceName reports whether a file name looks like an instance
// document rather than a linkbase or companion file.
func isInstanceName(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".xml") {
		return false
	}
	for _, suffix := range []string{"_pre.xml", "_lab.xml", "_cal.xml", "_def.xml"} {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

// tickerFromDir infers the ticker from the per-ticker directory layout.
func tickerFromDir(instancePath string) string {
	dir := filepath.Base(filepath.Dir(instancePath))
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	return strings.ToUpper(dir)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
