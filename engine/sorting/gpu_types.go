package sorting

import (
	_ "embed"
)

// GPUEntrySource is the canonical WGSL definition of the Entry struct.
// Matches Entry layout exactly (8 bytes), so entry slices are uploaded with common.SliceToBytes.
//
//go:embed assets/entry.wgsl
var GPUEntrySource string
