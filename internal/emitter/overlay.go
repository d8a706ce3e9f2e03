// Package emitter implements the re-serialization, media overlay, and
// packaging stage (spec.md §4.7, component C7).
package emitter

import (
	"encoding/xml"
	"fmt"

	"github.com/unalkalkan/TwelveReader/internal/align"
	"github.com/unalkalkan/TwelveReader/internal/interpolate"
)

type smilDoc struct {
	XMLName   xml.Name `xml:"smil"`
	Xmlns     string   `xml:"xmlns,attr"`
	XmlnsEpub string   `xml:"xmlns:epub,attr"`
	Version   string   `xml:"version,attr"`
	Body      smilBody `xml:"body"`
}

type smilBody struct {
	Seq smilSeq `xml:"seq"`
}

type smilSeq struct {
	ID      string    `xml:"id,attr"`
	TextRef string    `xml:"epub:textref,attr"`
	Type    string    `xml:"epub:type,attr"`
	Pars    []smilPar `xml:"par"`
}

type smilPar struct {
	ID    string    `xml:"id,attr"`
	Text  smilText  `xml:"text"`
	Audio smilAudio `xml:"audio"`
}

type smilText struct {
	Src string `xml:"src,attr"`
}

type smilAudio struct {
	Src        string `xml:"src,attr"`
	ClipBegin string `xml:"clipBegin,attr"`
	ClipEnd   string `xml:"clipEnd,attr"`
}

// Overlay is one chapter's media overlay manifest plus its narrated
// duration (spec.md §3 "MediaOverlay").
type Overlay struct {
	XML      []byte
	Duration float64
}

// BuildOverlay assembles a chapter's SMIL media overlay: one <par> per
// matched (non-Unmatched) sentence range, in ascending id order, with a
// text reference into the chapter document and an audio clip on the
// range's track. trackAudioHref maps a track index (as used by
// transcript.Concat) to its package-relative audio path.
func BuildOverlay(chapterPath string, ranges []align.Range, trackAudioHref func(trackIdx int) string) Overlay {
	doc := smilDoc{
		Xmlns:     "http://www.w3.org/ns/SMIL",
		XmlnsEpub: "http://www.idpf.org/2007/ops",
		Version:   "3.0",
		Body: smilBody{Seq: smilSeq{
			ID:      "seq-" + chapterBase(chapterPath),
			TextRef: chapterPath,
			Type:    "chapter",
		}},
	}

	for _, r := range ranges {
		if r.Unmatched {
			continue
		}
		id := fmt.Sprintf("sentence%d", r.SentenceID)
		doc.Body.Seq.Pars = append(doc.Body.Seq.Pars, smilPar{
			ID:   id,
			Text: smilText{Src: fmt.Sprintf("%s#%s", chapterPath, id)},
			Audio: smilAudio{
				Src:       trackAudioHref(r.TrackIdx),
				ClipBegin: clipTime(r.Start),
				ClipEnd:   clipTime(r.End),
			},
		})
	}

	out, _ := xml.MarshalIndent(doc, "", "  ")
	out = append([]byte(xml.Header), out...)
	return Overlay{XML: out, Duration: interpolate.ChapterDuration(ranges)}
}

func clipTime(seconds float64) string {
	return fmt.Sprintf("%gs", seconds)
}

func chapterBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
