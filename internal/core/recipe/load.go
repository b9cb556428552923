package recipe

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

//go:embed recipes.json
var starterData []byte

// fileFormat is the on-disk recipe table layout.
type fileFormat struct {
	Recipes []fileRecipe `json:"recipes"`
}

// fileRecipe is a single recipe entry in the on-disk layout.
type fileRecipe struct {
	Pair    [2]string `json:"pair"`
	Results []string  `json:"results"`
}

// Parse builds a book from a JSON recipe table.
//
// The expected layout is:
//
//	{"recipes": [{"pair": ["air", "fire"], "results": ["energy"]}, ...]}
//
// Element names are case-normalized; repeated pairs merge their results.
func Parse(data []byte) (*Book, error) {
	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode recipe table: %w", err)
	}

	recipes := make(map[Pair][]Element, len(file.Recipes))
	for _, entry := range file.Recipes {
		pair := NewPair(Normalize(entry.Pair[0]), Normalize(entry.Pair[1]))
		for _, result := range entry.Results {
			recipes[pair] = append(recipes[pair], Normalize(result))
		}
	}

	return New(recipes)
}

// LoadFile builds a book from a JSON recipe table on disk.
func LoadFile(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe table: %w", err)
	}
	return Parse(data)
}

var starter = sync.OnceValues(func() (*Book, error) {
	return Parse(starterData)
})

// Starter returns the embedded starter book with the classic base
// combinations. It lets the server run without an external data file.
func Starter() (*Book, error) {
	return starter()
}
