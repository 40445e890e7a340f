package mapreduce

import (
	"fmt"
	"io"
	"sort"
)

type kv struct {
	Key   string
	Value int
}

// sorted orders counts by value descending, then key ascending.
func sorted(counts map[string]int) []kv {
	ss := make([]kv, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, kv{k, v})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})
	return ss
}

// TopN returns the top n entries of counts formatted as "key:count"
// (e.g., "products/no title resolved:3").
func TopN(counts map[string]int, n int) []string {
	ss := sorted(counts)
	limit := min(max(n, 0), len(ss))

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}
	return out
}

// FprintTopN writes the top n entries of counts to w as a numbered list.
func FprintTopN(w io.Writer, counts map[string]int, n int) {
	ss := sorted(counts)
	limit := min(max(n, 0), len(ss))

	for i := 0; i < limit; i++ {
		fmt.Fprintf(w, "%d. %s: %d\n", i+1, ss[i].Key, ss[i].Value)
	}
}
