package discover

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/dshills/goattr/pkg/types"
)

// Deduplicate drops value-equal descriptors, keeping the first occurrence of
// each. Descriptors without field values collapse by bare type name.
func Deduplicate(in []types.Descriptor) []types.Descriptor {
	if len(in) <= 1 {
		return in
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]types.Descriptor, 0, len(in))
	for _, d := range in {
		key := dedupeKey(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

func dedupeKey(d types.Descriptor) string {
	if d.Empty() {
		return "name:" + d.BaseName()
	}

	body, err := d.Canonical()
	if err != nil {
		body = fmt.Appendf(nil, "%#v", d.Fields)
	}

	h := xxhash.New()
	_, _ = h.WriteString(d.Type)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(body)
	return "hash:" + strconv.FormatUint(h.Sum64(), 16)
}
