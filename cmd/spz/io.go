package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gsplat/spz"
)

// loadCloud decodes path using the codec implied by its suffix: ".ply" for
// the PLY bridge, anything else for the SPZ container.
func loadCloud(path string, target spz.CoordinateSystem) (*spz.Cloud, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, spz.NewIOError(spz.ReadError, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".ply") {
		return spz.DecodePLY(data, target)
	}
	return spz.DecodeSPZ(data, target)
}

// saveCloud encodes cloud using the codec implied by path's suffix and
// writes it out.
func saveCloud(path string, cloud *spz.Cloud, source spz.CoordinateSystem) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".ply") {
		data, err = spz.EncodePLY(cloud, source)
	} else {
		data, err = spz.EncodeSPZ(cloud, source)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return spz.NewIOError(spz.WriteError, err)
	}
	return nil
}
