package ga

// SelectElites returns the first k agents of a ranked slice
func SelectElites(ranked []*Agent, k int) []*Agent {
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// CarryBand returns ranks 0..c of a ranked slice: the best agent plus the next c
func CarryBand(ranked []*Agent, c int) []*Agent {
	if len(ranked) == 0 {
		return nil
	}
	n := c + 1
	if n < 1 {
		n = 1
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
