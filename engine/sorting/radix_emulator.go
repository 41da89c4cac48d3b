package sorting

// EmulateRadixSort runs the GPU radix sort on the CPU with the same data flow as the kernels:
// global digit histograms (kernel A), exclusive prefix sums per place (kernel B) and, per place,
// a tile-stable scatter whose tile prefixes come from a decoupled look-back over tile status
// words (kernel C). Tiles are processed in order, so every look-back resolves.
//
// The input is the entry buffer kernel A writes: one Entry per splat in index order, with
// CulledKey for splats outside the frustum. The input slice is not modified.
//
// Parameters:
//   - entries: the keyed entries in splat index order
//   - layout: the radix layout of the renderer
//
// Returns:
//   - []Entry: the entries ordered by ascending key, ties in input order
func EmulateRadixSort(entries []Entry, layout RadixLayout) []Entry {
	n := len(entries)
	base := layout.Base

	// Kernel A: global histograms, one row of Base counters per digit place.
	offsets := make([]uint32, base*layout.DigitPlaces)
	for _, e := range entries {
		for place := range layout.DigitPlaces {
			offsets[place*base+int(layout.Digit(e.Key, place))]++
		}
	}

	// Kernel B: exclusive scan of every row.
	for place := range layout.DigitPlaces {
		row := offsets[place*base : (place+1)*base]
		var sum uint32
		for d := range row {
			row[d], sum = sum, sum+row[d]
		}
	}

	src := append([]Entry(nil), entries...)
	dst := make([]Entry, n)
	tileEntries := layout.WorkgroupEntriesC
	tiles := (n + tileEntries - 1) / tileEntries
	status := make([]uint32, tiles*base)
	localCounts := make([]uint32, base)

	// Kernel C, once per place.
	for place := range layout.DigitPlaces {
		clear(status)
		row := offsets[place*base : (place+1)*base]

		for tile := range tiles {
			lo := tile * tileEntries
			hi := min(lo+tileEntries, n)

			clear(localCounts)
			for _, e := range src[lo:hi] {
				localCounts[layout.Digit(e.Key, place)]++
			}

			// Publish the tile aggregate, then walk back until an inclusive prefix is found.
			for d := range base {
				status[tile*base+d] = TileFlagAggregate | localCounts[d]
			}
			prefix := make([]uint32, base)
			for d := range base {
				for look := tile - 1; look >= 0; look-- {
					word := status[look*base+d]
					prefix[d] += word & TileCountMask
					if word&TileFlagInclusive != 0 {
						break
					}
				}
				status[tile*base+d] = TileFlagInclusive | (prefix[d] + localCounts[d])
			}

			// Stable rank inside the tile.
			clear(localCounts)
			for _, e := range src[lo:hi] {
				d := layout.Digit(e.Key, place)
				dst[row[d]+prefix[d]+localCounts[d]] = e
				localCounts[d]++
			}
		}
		src, dst = dst, src
	}
	return src
}
