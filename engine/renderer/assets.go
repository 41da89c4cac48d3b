package renderer

import _ "embed"

var (
	//go:embed assets/splat.wgsl
	splatShaderSource string

	//go:embed assets/radix_sort_a.wgsl
	radixSortASource string

	//go:embed assets/radix_sort_b.wgsl
	radixSortBSource string

	//go:embed assets/radix_sort_c.wgsl
	radixSortCSource string
)
