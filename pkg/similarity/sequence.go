package similarity

// SequenceRatio computes the Ratcliff-Obershelp similarity ratio between two
// strings: 2*M / (len(a)+len(b)) where M is the total length of matching
// blocks found by recursively splitting around the longest common substring.
// The result is in [0, 1], symmetric, and 1.0 only for identical strings.
func SequenceRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	ar, br := []rune(a), []rune(b)
	matches := matchingBlocks(ar, br)
	return 2.0 * float64(matches) / float64(len(ar)+len(br))
}

func matchingBlocks(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	aStart, bStart, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}

	total := size
	total += matchingBlocks(a[:aStart], b[:bStart])
	total += matchingBlocks(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (aStart, bStart, size int) {
	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}

	return aStart, bStart, size
}
