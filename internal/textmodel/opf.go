package textmodel

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// container is the OCF META-INF/container.xml document: it points at the
// package (OPF) document's path.
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// ParseContainer returns the package document's path from container.xml.
func ParseContainer(r io.Reader) (string, error) {
	var c container
	if err := xml.NewDecoder(r).Decode(&c); err != nil {
		return "", fmt.Errorf("textmodel: parse container.xml: %w", err)
	}
	if len(c.Rootfiles.Rootfile) == 0 {
		return "", fmt.Errorf("textmodel: container.xml has no rootfile")
	}
	return c.Rootfiles.Rootfile[0].FullPath, nil
}

// opfMeta is an OPF <meta> element: either the EPUB2 name/content cover
// convention, or an EPUB3 property/refines entry such as media:duration.
type opfMeta struct {
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfMetadata struct {
	Title    string    `xml:"title"`
	Creators []string  `xml:"creator"`
	Language string    `xml:"language"`
	Metas    []opfMeta `xml:"meta"`
}

type opfItem struct {
	ID           string `xml:"id,attr"`
	Href         string `xml:"href,attr"`
	MediaType    string `xml:"media-type,attr"`
	Properties   string `xml:"properties,attr,omitempty"`
	MediaOverlay string `xml:"media-overlay,attr,omitempty"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// Package is the parsed OPF package document: metadata, manifest, spine.
// Base is the package-root-relative directory the manifest's hrefs
// resolve against (path.Dir of the OPF document's own path); it is set by
// the caller once the OPF's own path is known, since the document itself
// doesn't carry it.
type Package struct {
	Base string

	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []opfItemRef `xml:"itemref"`
	} `xml:"spine"`
}

// ParseOPF parses a package document.
func ParseOPF(r io.Reader) (*Package, error) {
	var p Package
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("textmodel: parse package document: %w", err)
	}
	return &p, nil
}

// SpinePaths resolves the spine's idrefs to manifest hrefs, in reading
// order (spec.md §6: "a package with an ordered reading spine").
func (p *Package) SpinePaths() []string {
	byID := make(map[string]string, len(p.Manifest.Items))
	for _, it := range p.Manifest.Items {
		byID[it.ID] = it.Href
	}
	var out []string
	for _, ref := range p.Spine.ItemRefs {
		if href, ok := byID[ref.IDRef]; ok {
			out = append(out, href)
		}
	}
	return out
}

// CoverHref resolves the package's cover image: the EPUB3
// properties="cover-image" manifest item if present, else the EPUB2
// <meta name="cover" content="{manifest id}"/> convention.
func (p *Package) CoverHref() string {
	for _, it := range p.Manifest.Items {
		for _, prop := range strings.Fields(it.Properties) {
			if prop == "cover-image" {
				return it.Href
			}
		}
	}
	var coverID string
	for _, m := range p.Metadata.Metas {
		if m.Name == "cover" {
			coverID = m.Content
		}
	}
	if coverID == "" {
		return ""
	}
	for _, it := range p.Manifest.Items {
		if it.ID == coverID {
			return it.Href
		}
	}
	return ""
}

// AddItem registers a new manifest entry — an overlay document, audio
// track, or stylesheet — given its package-root-relative path. The
// manifest stores hrefs relative to the package document's own
// directory (Base), same as every href an OPF author would write by
// hand, so fullPath is rewritten relative to Base before storing.
func (p *Package) AddItem(id, fullPath, mediaType, properties string) {
	p.Manifest.Items = append(p.Manifest.Items, opfItem{
		ID: id, Href: relHref(p.Base, fullPath), MediaType: mediaType, Properties: properties,
	})
}

// relHref expresses target (package-root-relative) as a path relative to
// base (the package-root-relative directory an href in this package
// document is resolved against).
func relHref(base, target string) string {
	if base == "" || base == "." {
		return target
	}
	baseParts := strings.Split(base, "/")
	targetParts := strings.Split(target, "/")
	i := 0
	for i < len(baseParts) && i < len(targetParts)-1 && baseParts[i] == targetParts[i] {
		i++
	}
	up := strings.Repeat("../", len(baseParts)-i)
	return up + strings.Join(targetParts[i:], "/")
}

// SetOverlay points the manifest item for the chapter at chapterPath
// (package-root-relative, as produced by joinPackagePath) at its media
// overlay's manifest id, per spec.md §6's "media-overlay attribute
// pointing at its SMIL id".
func (p *Package) SetOverlay(chapterPath, overlayID string) {
	for i := range p.Manifest.Items {
		if joinPackagePath(p.Base, p.Manifest.Items[i].Href) == chapterPath {
			p.Manifest.Items[i].MediaOverlay = overlayID
			return
		}
	}
}

// AddDurationMeta records a per-overlay media:duration entry (spec.md
// §4.7/§6), refining the overlay's own manifest id.
func (p *Package) AddDurationMeta(overlayID, duration string) {
	p.Metadata.Metas = append(p.Metadata.Metas, opfMeta{
		Property: "media:duration", Refines: "#" + overlayID, Value: duration,
	})
}

// AddTotalDurationMeta records the book-wide media:duration entry (no
// refines attribute — it describes the whole package).
func (p *Package) AddTotalDurationMeta(duration string) {
	p.Metadata.Metas = append(p.Metadata.Metas, opfMeta{Property: "media:duration", Value: duration})
}

// SetActiveClassMeta records the media:active-class entry spec.md §4.7
// requires once per package.
func (p *Package) SetActiveClassMeta(class string) {
	p.Metadata.Metas = append(p.Metadata.Metas, opfMeta{Property: "media:active-class", Value: class})
}

// dcOutput mirrors opfMetadata's title/creator/language for serialization
// only: emitted in the Dublin Core namespace (dc:title etc.), which
// opfMetadata's bare tags deliberately don't require on parse (EPUB
// packages vary in whether that prefix is even declared).
type dcOutput struct {
	XMLName  xml.Name      `xml:"metadata"`
	XmlnsDC  string        `xml:"xmlns:dc,attr"`
	Title    string        `xml:"dc:title"`
	Creators []string      `xml:"dc:creator"`
	Language string        `xml:"dc:language"`
	Metas    []opfMeta     `xml:"meta"`
}

type packageOutput struct {
	XMLName  xml.Name `xml:"package"`
	Xmlns    string   `xml:"xmlns,attr"`
	Version  string   `xml:"version,attr"`
	Metadata dcOutput `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []opfItemRef `xml:"itemref"`
	} `xml:"spine"`
}

// Serialize re-emits the package document: original title/creators/
// language/manifest/spine plus whatever AddItem/SetOverlay/
// AddDurationMeta/SetActiveClassMeta calls have appended. Package
// metadata beyond title/creator/language/meta (e.g. dc:identifier,
// dc:subject) isn't modeled by TextBook and so isn't round-tripped —
// see DESIGN.md.
func (p *Package) Serialize() ([]byte, error) {
	out := packageOutput{
		Xmlns:   "http://www.idpf.org/2007/opf",
		Version: "3.0",
	}
	out.Metadata = dcOutput{
		XmlnsDC:  "http://purl.org/dc/elements/1.1/",
		Title:    p.Metadata.Title,
		Creators: p.Metadata.Creators,
		Language: p.Metadata.Language,
		Metas:    p.Metadata.Metas,
	}
	out.Manifest.Items = p.Manifest.Items
	out.Spine.ItemRefs = p.Spine.ItemRefs

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("textmodel: serialize package document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
