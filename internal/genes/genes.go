// Package genes decodes the fixed-width decimal gene strings carried by
// the dragon contract into derived traits. Both decoders are pure and
// tolerate malformed input by degrading to zero.
package genes

// Visual gene layout: one digit per trait category at a fixed offset.
// Offsets 15 and 16 (spins, claws) do not contribute to rarity.
var rarityTraits = []struct {
	offset  int
	weights []uint8
}{
	{3, []uint8{0, 2, 3, 3, 4, 5}},                // aura
	{5, []uint8{0, 2, 3, 3, 3, 3, 4, 5}},          // horns
	{7, []uint8{1, 2, 3, 4, 5}},                   // scales
	{9, []uint8{0, 1, 2, 2, 2, 2, 2, 2, 8, 5}},    // spots
	{11, []uint8{0, 2, 3, 3, 3, 3, 3, 4, 5}},      // tail
	{13, []uint8{0, 1, 2, 3, 4, 5}},               // wings
	{17, []uint8{0, 1, 4, 6}},                     // body
	{19, []uint8{0, 1, 3, 3, 3, 3, 4, 4, 5, 6}},   // eyes
	{21, []uint8{0, 1, 3, 5, 6, 7}},               // head
}

// Rarity tiers, by bucketed weight sum:
// 0 None, 1 Uncommon, 2 Rare, 3 Mythical, 4 Legendary,
// 5 Immortal, 6 Arcana, 7 Ancient.
var rarityBuckets = []struct {
	max  uint16
	tier uint8
}{
	{15, 0},
	{23, 1},
	{31, 2},
	{39, 3},
	{47, 4},
	{55, 5},
	{63, 6},
}

// Rarity sums the per-category weights of the nine rarity-bearing trait
// digits in a visual gene string and buckets the sum into a tier 0-7.
// A missing, short or garbled gene contributes zero weight per trait,
// so malformed input lands in the lowest tiers instead of failing.
func Rarity(genImage string) uint8 {
	var sum uint16
	for _, tr := range rarityTraits {
		sum += uint16(traitWeight(genImage, tr.offset, tr.weights))
	}
	for _, b := range rarityBuckets {
		if sum <= b.max {
			return b.tier
		}
	}
	return 7
}

func traitWeight(gens string, offset int, weights []uint8) uint8 {
	if offset >= len(gens) {
		return 0
	}
	c := gens[offset]
	if c < '0' || c > '9' {
		return 0
	}
	idx := int(c - '0')
	if idx >= len(weights) {
		return 0
	}
	return weights[idx]
}

// Battle gene layout: the last two characters are ignored, the 20
// characters before them are the defence block and the 20 before those
// the attack block.
const (
	strengthBlockLen = 20
	strengthTailSkip = 2
	strengthMinLen   = strengthTailSkip + 2*strengthBlockLen
)

// Strength sums the two-digit chunks of the attack and defence blocks
// of a battle gene string. A block containing anything but digits, or a
// string too short to hold both blocks, counts as zero.
func Strength(genBattle string) uint16 {
	if len(genBattle) < strengthMinLen {
		return 0
	}
	defence := genBattle[len(genBattle)-strengthTailSkip-strengthBlockLen : len(genBattle)-strengthTailSkip]
	attack := genBattle[len(genBattle)-strengthMinLen : len(genBattle)-strengthTailSkip-strengthBlockLen]
	return blockSum(attack) + blockSum(defence)
}

func blockSum(block string) uint16 {
	var sum uint16
	for i := 0; i+1 < len(block); i += 2 {
		hi, lo := block[i], block[i+1]
		if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
			return 0
		}
		sum += uint16(hi-'0')*10 + uint16(lo-'0')
	}
	return sum
}
