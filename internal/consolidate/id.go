package consolidate

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// IDLength is the fixed length of a consolidated record id.
const IDLength = 16

// GroupID derives the id of a consolidated record from its group key. The
// same key always yields the same id: xxhash64 of "kind|category|subcategory"
// in base 36, left-padded with zeros.
func GroupID(kind, category, subcategory string) string {
	sum := xxhash.Sum64String(kind + "|" + category + "|" + subcategory)
	s := strconv.FormatUint(sum, 36)
	return strings.Repeat("0", IDLength-len(s)) + s
}
