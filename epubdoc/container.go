package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
)

// Container errors.
var (
	ErrNoContainer      = errors.New("epub: missing META-INF/container.xml")
	ErrInvalidContainer = errors.New("epub: invalid container.xml")
	ErrNoRootfile       = errors.New("epub: no rootfile in container.xml")
)

type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// parseContainer locates the package document through
// META-INF/container.xml.
func parseContainer(zr *zip.Reader) (string, error) {
	data, err := readFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", ErrNoContainer
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", ErrInvalidContainer
	}

	for _, rf := range c.Rootfiles {
		if rf.FullPath == "" {
			continue
		}
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			return rf.FullPath, nil
		}
	}

	// No media-type match; settle for the first usable entry.
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", ErrNoRootfile
}
