// Package catalog holds the fixed list of cover images and the resolver
// that maps a book title onto it.
package catalog

import (
	"crypto/md5"
	"fmt"
	"math/big"
	"slices"

	"gopkg.in/yaml.v3"
)

// defaultImages is the built-in catalog. Order matters: existing clients
// depend on the index each title resolves to.
var defaultImages = []string{
	"https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1529651737248-dad5e20a9f5f?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1532012197267-da84d127e765?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1512820790803-83ca734da794?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1535905557558-afc4877cdf3f?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1519904981063-b0cf448d479e?w=300&h=400&fit=crop",
	"https://images.unsplash.com/photo-1506880018603-83d5b814b5a6?w=300&h=400&fit=crop",
}

// Validator checks catalog entries. *validation.URLValidator satisfies it.
type Validator interface {
	ValidateCatalog(urls []string) error
}

// Catalog is an immutable, non-empty, ordered list of image URLs.
type Catalog struct {
	images []string
}

// Default returns the built-in ten image catalog.
func Default() *Catalog {
	return &Catalog{images: slices.Clone(defaultImages)}
}

// New copies urls into a catalog after validating them. A nil validator
// only enforces that the catalog is non-empty.
func New(urls []string, v Validator) (*Catalog, error) {
	if v != nil {
		if err := v.ValidateCatalog(urls); err != nil {
			return nil, err
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one image")
	}
	return &Catalog{images: slices.Clone(urls)}, nil
}

// Len returns the number of images.
func (c *Catalog) Len() int {
	return len(c.images)
}

// URLs returns a copy of the images in catalog order.
func (c *Catalog) URLs() []string {
	return slices.Clone(c.images)
}

// Resolve maps title to its catalog slot.
func (c *Catalog) Resolve(title string) (int, string) {
	i := Index(title, len(c.images))
	return i, c.images[i]
}

// Index interprets the MD5 digest of title as a big-endian unsigned
// integer and reduces it modulo size. size must be positive.
func Index(title string, size int) int {
	sum := md5.Sum([]byte(title))
	n := new(big.Int).SetBytes(sum[:])
	return int(n.Mod(n, big.NewInt(int64(size))).Int64())
}

// Document is the YAML form of a catalog.
type Document struct {
	Images []string `yaml:"images"`
}

// Parse decodes a YAML catalog document and builds a validated catalog.
func Parse(data []byte, v Validator) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog document: %w", err)
	}
	return New(doc.Images, v)
}

// Marshal renders the catalog as a YAML document accepted by Parse.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(Document{Images: c.URLs()})
}
