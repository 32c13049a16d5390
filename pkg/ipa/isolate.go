package ipa

import "bytes"

var (
	xmlDeclaration = []byte(`<?xml version="1.0" encoding="UTF-8"?>`)
	plistEndTag    = []byte(`</plist>`)
)

// IsolatePlistRegion locates the XML property list embedded in a signed
// provisioning profile container. The returned offsets are half-open, so
// data[start:end] starts at the XML declaration and ends with the closing
// </plist> tag. ok is false if either marker is missing.
func IsolatePlistRegion(data []byte) (start, end int, ok bool) {
	start = bytes.Index(data, xmlDeclaration)
	if start < 0 {
		return 0, 0, false
	}
	idx := bytes.Index(data[start:], plistEndTag)
	if idx < 0 {
		return 0, 0, false
	}
	return start, start + idx + len(plistEndTag), true
}
