// Package recipe resolves unordered element pairs against an immutable
// combination table.
package recipe

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoRecipes indicates a book was built without any recipes.
	ErrNoRecipes = errors.New("at least one recipe is required")
	// ErrEmptyElement indicates a recipe references an empty element name.
	ErrEmptyElement = errors.New("element name is required")
	// ErrEmptyResult indicates a recipe maps a pair to no results.
	ErrEmptyResult = errors.New("recipe results must be non-empty")
	// ErrUnknownElement indicates an element outside the book vocabulary.
	ErrUnknownElement = errors.New("element is not in the vocabulary")
)

// Element is an interned, case-normalized game item identifier.
type Element string

// Normalize canonicalizes a raw item name into an Element.
func Normalize(name string) Element {
	return Element(strings.ToLower(strings.TrimSpace(name)))
}

// Pair is an unordered pair of elements in canonical order.
// Construct pairs with NewPair so that the pair for (a, b) and (b, a)
// compare equal.
type Pair struct {
	First  Element
	Second Element
}

// NewPair canonicalizes two elements into a Pair.
func NewPair(a, b Element) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{First: a, Second: b}
}

// String renders the pair for logs and error metadata.
func (p Pair) String() string {
	return fmt.Sprintf("%s + %s", p.First, p.Second)
}

// UnknownElementError reports a lookup argument outside the vocabulary.
// It matches ErrUnknownElement under errors.Is.
type UnknownElementError struct {
	Element Element
}

// Error implements the error interface.
func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("element %q is not in the vocabulary", e.Element)
}

// Is reports whether target is the unknown-element sentinel.
func (e *UnknownElementError) Is(target error) bool {
	return target == ErrUnknownElement
}

// Result is the outcome of a lookup: a hit carries one or more result
// elements in lexicographic order, a miss carries none.
type Result struct {
	Elements []Element
}

// Hit reports whether the pair resolved to a recipe.
func (r Result) Hit() bool {
	return len(r.Elements) > 0
}

// Book is an immutable mapping from canonical pairs to result elements.
//
// # Vocabulary
//
// The vocabulary is closed and fixed at construction: it is the union of
// every element appearing as an ingredient or a result. Lookup rejects
// elements outside it.
//
// # Final elements
//
// An element is final when it never occurs as either member of any pair
// key. Final elements cannot be used as ingredients; the set is derived
// once at construction and never changes.
type Book struct {
	recipes    map[Pair][]Element
	vocabulary map[Element]struct{}
	finals     map[Element]struct{}
}

// New builds an immutable book from a pair-to-results mapping.
//
// Every pair must map to at least one result, and every element name must
// be non-empty. Input maps and slices are copied; results are sorted and
// deduplicated so multi-result recipes resolve deterministically.
func New(recipes map[Pair][]Element) (*Book, error) {
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}

	book := &Book{
		recipes:    make(map[Pair][]Element, len(recipes)),
		vocabulary: make(map[Element]struct{}),
		finals:     make(map[Element]struct{}),
	}

	for pair, results := range recipes {
		if pair.First == "" || pair.Second == "" {
			return nil, ErrEmptyElement
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("recipe %s: %w", pair, ErrEmptyResult)
		}

		canonical := NewPair(pair.First, pair.Second)
		book.vocabulary[canonical.First] = struct{}{}
		book.vocabulary[canonical.Second] = struct{}{}

		seen := make(map[Element]struct{}, len(results))
		copied := make([]Element, 0, len(results))
		for _, result := range results {
			if result == "" {
				return nil, fmt.Errorf("recipe %s: %w", pair, ErrEmptyElement)
			}
			if _, dup := seen[result]; dup {
				continue
			}
			seen[result] = struct{}{}
			copied = append(copied, result)
			book.vocabulary[result] = struct{}{}
		}
		sort.Slice(copied, func(i, j int) bool { return copied[i] < copied[j] })
		book.recipes[canonical] = copied
	}

	ingredients := make(map[Element]struct{}, len(book.recipes)*2)
	for pair := range book.recipes {
		ingredients[pair.First] = struct{}{}
		ingredients[pair.Second] = struct{}{}
	}
	for element := range book.vocabulary {
		if _, ok := ingredients[element]; !ok {
			book.finals[element] = struct{}{}
		}
	}

	return book, nil
}

// Lookup resolves an unordered pair to its result set.
//
// Lookup is pure and symmetric: Lookup(a, b) and Lookup(b, a) return the
// same Result. A pair without a recipe yields a miss, not an error.
// Elements outside the vocabulary yield an UnknownElementError.
func (b *Book) Lookup(e1, e2 Element) (Result, error) {
	if !b.Contains(e1) {
		return Result{}, &UnknownElementError{Element: e1}
	}
	if !b.Contains(e2) {
		return Result{}, &UnknownElementError{Element: e2}
	}

	results, ok := b.recipes[NewPair(e1, e2)]
	if !ok {
		return Result{}, nil
	}

	elements := make([]Element, len(results))
	copy(elements, results)
	return Result{Elements: elements}, nil
}

// Contains reports whether an element belongs to the vocabulary.
func (b *Book) Contains(element Element) bool {
	_, ok := b.vocabulary[element]
	return ok
}

// IsFinal reports whether an element never occurs as an ingredient.
// Elements outside the vocabulary are not final.
func (b *Book) IsFinal(element Element) bool {
	_, ok := b.finals[element]
	return ok
}

// Len returns the number of recipes in the book.
func (b *Book) Len() int {
	return len(b.recipes)
}

// Vocabulary returns the closed element vocabulary in lexicographic order.
func (b *Book) Vocabulary() []Element {
	elements := make([]Element, 0, len(b.vocabulary))
	for element := range b.vocabulary {
		elements = append(elements, element)
	}
	sort.Slice(elements, func(i, j int) bool { return elements[i] < elements[j] })
	return elements
}

// Pairs returns every recipe pair in lexicographic order. It is intended
// for rendering combination guides, not for gameplay lookups.
func (b *Book) Pairs() []Pair {
	pairs := make([]Pair, 0, len(b.recipes))
	for pair := range b.recipes {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
	return pairs
}
