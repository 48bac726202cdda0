package usecase

import (
	"sort"
	"strings"

	"github.com/listwise/backend/internal/domain"
)

// indexedName is one normalized candidate string (canonical name or
// synonym) scanned by the partial and fuzzy stages
type indexedName struct {
	text    string
	tokens  []string
	product *domain.CatalogProduct
}

// brandEntry is one normalized brand phrase for greedy extraction
type brandEntry struct {
	phrase string
	words  int
}

// catalogIndex is the immutable snapshot the pipeline resolves against.
// Built once per catalog load; resolution never mutates it.
type catalogIndex struct {
	products []domain.CatalogProduct

	byID      map[string]*domain.CatalogProduct
	byName    map[string]*domain.CatalogProduct   // normalized canonical name
	bySynonym map[string]*domain.CatalogProduct   // normalized synonym, smallest product id wins
	brandsOf  map[string]map[string]bool          // product id -> normalized known brands

	canonicals []indexedName // id order, partial and fuzzy scans
	synonyms   []indexedName // id order, fuzzy scans

	vocab     map[string]bool // tokens of canonical names and synonyms
	vocabList []string        // sorted, deterministic corrector scans

	brands []brandEntry // longest phrase first
}

// buildIndex derives the lookup structures from a catalog snapshot.
// Products are sorted by id so every scan order, and therefore every
// tie-break, is deterministic.
func buildIndex(products []domain.CatalogProduct, extraBrands []string) *catalogIndex {
	sorted := make([]domain.CatalogProduct, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	ix := &catalogIndex{
		products:  sorted,
		byID:      make(map[string]*domain.CatalogProduct, len(sorted)),
		byName:    make(map[string]*domain.CatalogProduct, len(sorted)),
		bySynonym: make(map[string]*domain.CatalogProduct),
		brandsOf:  make(map[string]map[string]bool),
		vocab:     make(map[string]bool),
	}

	brandSet := make(map[string]bool)
	for i := range ix.products {
		p := &ix.products[i]
		if p.ID == "" {
			continue
		}
		ix.byID[p.ID] = p

		name := Normalize(p.Name)
		if name != "" {
			// First writer wins: products are in id order, so a duplicate
			// normalized name keeps the smaller id
			if _, exists := ix.byName[name]; !exists {
				ix.byName[name] = p
			}
			ix.canonicals = append(ix.canonicals, indexedName{name, strings.Fields(name), p})
			for _, tok := range strings.Fields(name) {
				ix.vocab[tok] = true
			}
		}

		for _, syn := range p.Synonyms {
			s := Normalize(syn)
			if s == "" {
				continue
			}
			if _, exists := ix.bySynonym[s]; !exists {
				ix.bySynonym[s] = p
			}
			ix.synonyms = append(ix.synonyms, indexedName{s, strings.Fields(s), p})
			for _, tok := range strings.Fields(s) {
				ix.vocab[tok] = true
			}
		}

		for _, b := range p.Brands {
			nb := Normalize(b)
			if nb == "" {
				continue
			}
			brandSet[nb] = true
			if ix.brandsOf[p.ID] == nil {
				ix.brandsOf[p.ID] = make(map[string]bool)
			}
			ix.brandsOf[p.ID][nb] = true
		}
	}

	for _, b := range extraBrands {
		if nb := Normalize(b); nb != "" {
			brandSet[nb] = true
		}
	}

	ix.vocabList = make([]string, 0, len(ix.vocab))
	for tok := range ix.vocab {
		ix.vocabList = append(ix.vocabList, tok)
	}
	sort.Strings(ix.vocabList)

	ix.brands = make([]brandEntry, 0, len(brandSet))
	for phrase := range brandSet {
		ix.brands = append(ix.brands, brandEntry{phrase, 1 + strings.Count(phrase, " ")})
	}
	// Longest first so multi-word brands win over their own prefixes
	sort.Slice(ix.brands, func(i, j int) bool {
		if ix.brands[i].words != ix.brands[j].words {
			return ix.brands[i].words > ix.brands[j].words
		}
		if len(ix.brands[i].phrase) != len(ix.brands[j].phrase) {
			return len(ix.brands[i].phrase) > len(ix.brands[j].phrase)
		}
		return ix.brands[i].phrase < ix.brands[j].phrase
	})

	return ix
}

// lookupName returns the product whose normalized canonical name equals the
// core phrase or the full normalized text
func (ix *catalogIndex) lookupName(core, full string) *domain.CatalogProduct {
	if p, ok := ix.byName[core]; ok {
		return p
	}
	if full != core {
		if p, ok := ix.byName[full]; ok {
			return p
		}
	}
	return nil
}

// lookupSynonym mirrors lookupName over the synonym table
func (ix *catalogIndex) lookupSynonym(core, full string) *domain.CatalogProduct {
	if p, ok := ix.bySynonym[core]; ok {
		return p
	}
	if full != core {
		if p, ok := ix.bySynonym[full]; ok {
			return p
		}
	}
	return nil
}

// hasBrand reports whether the extracted brand is one of the product's
// known brands
func (ix *catalogIndex) hasBrand(productID, brand string) bool {
	return brand != "" && ix.brandsOf[productID][brand]
}
