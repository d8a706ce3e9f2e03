package textmodel

import (
	"fmt"
	"io"
	"path"
)

// Opener resolves a package-relative path to its content. Callers back it
// with an *archive/zip.Reader or any other package source.
type Opener func(name string) (io.ReadCloser, error)

// TextBook is the parsed package: title/author/language metadata, a cover
// reference, and its chapters in spine order (spec.md §3 "TextBook").
type TextBook struct {
	Title     string
	Authors   []string
	Language  string
	CoverPath string
	Chapters  []*Chapter

	// OPFPath and Package let a caller rewrite and re-serialize the
	// package document after sync (new manifest items, media-overlay
	// attributes, media:duration/active-class metadata — spec.md §6).
	OPFPath string
	Package *Package
}

// Load reads container.xml, then the package document it points to, then
// every spine chapter, via open. Per spec.md §7 a malformed package is
// fatal for the book.
func Load(open Opener) (*TextBook, error) {
	containerR, err := open("META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("textmodel: open container.xml: %w", err)
	}
	opfPath, err := ParseContainer(containerR)
	containerR.Close()
	if err != nil {
		return nil, err
	}

	opfR, err := open(opfPath)
	if err != nil {
		return nil, fmt.Errorf("textmodel: open package document %s: %w", opfPath, err)
	}
	pkg, err := ParseOPF(opfR)
	opfR.Close()
	if err != nil {
		return nil, err
	}

	base := path.Dir(opfPath)
	pkg.Base = base
	book := &TextBook{
		Title:    pkg.Metadata.Title,
		Authors:  pkg.Metadata.Creators,
		Language: pkg.Metadata.Language,
		OPFPath:  opfPath,
		Package:  pkg,
	}
	if cover := pkg.CoverHref(); cover != "" {
		book.CoverPath = joinPackagePath(base, cover)
	}

	for _, href := range pkg.SpinePaths() {
		full := joinPackagePath(base, href)
		r, err := open(full)
		if err != nil {
			return nil, fmt.Errorf("textmodel: open chapter %s: %w", full, err)
		}
		ch, err := ParseChapter(full, r)
		r.Close()
		if err != nil {
			return nil, err
		}
		book.Chapters = append(book.Chapters, ch)
	}
	return book, nil
}

func joinPackagePath(base, href string) string {
	if base == "." || base == "" {
		return href
	}
	return path.Join(base, href)
}
