package graph

// Chunk splits text into contiguous units of at most size runes. Units
// are non-overlapping and cover the whole input; concatenating them
// reproduces the text exactly. Boundaries are fixed-width and ignore
// sentence or paragraph structure, trading semantic cleanliness for
// determinism.
//
// Empty text yields no units; text shorter than size yields one unit
// equal to the whole text.
func Chunk(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)
	units := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		units = append(units, string(runes[start:end]))
	}
	return units
}
