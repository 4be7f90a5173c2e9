// Command bptreedemo exercises the bptree.Map API end to end: bulk
// construction, point lookup, and a bounded range scan. Adapted from the
// teacher's main.go (Sahilb315-Storage-Engine), generalized from a toy
// byte-keyed demo to the generic façade.
package main

import (
	"fmt"

	"github.com/go-logr/stdr"

	"github.com/sahilb315/bptree/bptree"
)

func main() {
	logger := stdr.New(nil)

	items := make([]bptree.Pair[int, string], 0, 20)
	for i := range 20 {
		items = append(items, bptree.Pair[int, string]{Key: i, Value: fmt.Sprintf("value-%d", i)})
	}

	tree, err := bptree.FromSorted(items, bptree.WithCapacity(4), bptree.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	if v, ok := tree.Get(7); ok {
		fmt.Println("get(7) =", v)
	}

	start, end := 5, 10
	for k, v := range tree.Range(&start, &end) {
		fmt.Printf("%d: %s\n", k, v)
	}

	fmt.Println("size =", tree.Len())
}
