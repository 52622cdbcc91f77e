// Package dataset reads and writes annotated datasets.
//
// Three layouts are supported: a TSV directory (documents/ and annotations/
// with one file per instance), a binary file using the protobuf wire format,
// and an XML file with inline annotations. Offsets are byte offsets into the
// instance text.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nopper/wikibench/mention"
)

// ErrMalformed is returned when a dataset file cannot be decoded.
var ErrMalformed = errors.New("dataset: malformed input")

// Format is an on-disk dataset layout.
type Format int

const (
	// FormatTSV is a directory with documents/ and annotations/.
	FormatTSV Format = iota
	// FormatBinary is a single protobuf-encoded file.
	FormatBinary
	// FormatXML is a single XML file with inline annotations.
	FormatXML
)

// FormatOf picks the layout from the path extension. Anything that is not
// .bin or .xml is treated as a TSV directory.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return FormatBinary
	case ".xml":
		return FormatXML
	default:
		return FormatTSV
	}
}

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatXML:
		return "xml"
	default:
		return "tsv"
	}
}

// Open loads a dataset in the layout given by FormatOf(path).
func Open(path string) (*mention.Dataset, error) {
	var (
		ds  *mention.Dataset
		err error
	)

	switch FormatOf(path) {
	case FormatBinary:
		ds, err = Load(path)
	case FormatXML:
		ds, err = LoadXML(path)
	default:
		ds, err = LoadTSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	return ds, nil
}

// Write stores ds in the layout given by FormatOf(path).
func Write(ds *mention.Dataset, path string) error {
	var err error

	switch FormatOf(path) {
	case FormatBinary:
		err = Save(ds, path)
	case FormatXML:
		err = SaveXML(ds, path)
	default:
		err = SaveTSV(ds, path)
	}
	if err != nil {
		return fmt.Errorf("writing dataset %s: %w", path, err)
	}
	return nil
}
