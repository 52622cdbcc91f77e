package dataset

import (
	"bufio"
	"cmp"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/nopper/wikibench/mention"
)

const (
	xmlDataset    = "dataset"
	xmlInstance   = "instance"
	xmlAnnotation = "annotation"
)

// LoadXML reads an XML dataset file.
func LoadXML(path string) (*mention.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	return ReadXML(bufio.NewReader(f))
}

// SaveXML writes ds as an XML dataset file.
func SaveXML(ds *mention.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dataset file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := WriteXML(w, ds); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing dataset file: %w", err)
	}
	return f.Close()
}

// WriteXML encodes ds with every mention inlined as an annotation element
// around the text it covers. Mentions overlapping an earlier one are not
// representable and are left out.
func WriteXML(w io.Writer, ds *mention.Dataset) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing xml header: %w", err)
	}

	enc := xml.NewEncoder(w)
	root := xml.StartElement{
		Name: xml.Name{Local: xmlDataset},
		Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: ds.Name}},
	}

	tokens := []xml.Token{root}
	for _, in := range ds.Instances {
		tokens = append(tokens, instanceTokens(in)...)
	}
	tokens = append(tokens, root.End())

	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return fmt.Errorf("encoding xml: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("encoding xml: %w", err)
	}
	return nil
}

func instanceTokens(in *mention.Instance) []xml.Token {
	start := xml.StartElement{Name: xml.Name{Local: xmlInstance}}
	tokens := []xml.Token{start}

	mentions := slices.SortedStableFunc(slices.Values(in.Mentions), func(a, b *mention.Mention) int {
		return cmp.Compare(a.Start, b.Start)
	})

	text := in.Text
	last := 0
	for _, m := range mentions {
		if m.Start < last || m.End > len(text) {
			continue
		}

		ann := xml.StartElement{
			Name: xml.Name{Local: xmlAnnotation},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "wid"}, Value: strconv.Itoa(m.EntityID)},
				{Name: xml.Name{Local: "title"}, Value: m.Title},
			},
		}
		tokens = append(tokens,
			xml.CharData(text[last:m.Start]),
			ann,
			xml.CharData(text[m.Start:m.End]),
			ann.End(),
		)
		last = m.End
	}

	return append(tokens, xml.CharData(text[last:]), start.End())
}

// ReadXML decodes an XML dataset. Instances are numbered in document order.
//
// An annotation either carries wid and title attributes, or a ranked list
// rank_N_id, rank_N_title and rank_N_score for N = 0, 1, ... which yields one
// mention per rank with the rank score as confidence. Annotation text is
// whitespace-normalized before it is appended to the instance text.
func ReadXML(r io.Reader) (*mention.Dataset, error) {
	dec := xml.NewDecoder(r)
	ds := &mention.Dataset{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case xmlDataset:
			ds.Name = attr(se, "name")
		case xmlInstance:
			in, err := readInstance(dec, len(ds.Instances))
			if err != nil {
				return nil, fmt.Errorf("instance %d: %w", len(ds.Instances), err)
			}
			ds.Instances = append(ds.Instances, in)
		}
	}
}

func readInstance(dec *xml.Decoder, id int) (*mention.Instance, error) {
	var text strings.Builder
	in := &mention.Instance{ID: id}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			if t.Name.Local != xmlAnnotation {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
				}
				continue
			}

			var inner string
			if err := dec.DecodeElement(&inner, &t); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}

			spot := mention.NormalizeSpot(inner)
			start := text.Len()
			text.WriteString(spot)

			mentions, err := annotationMentions(t, spot, start, text.Len())
			if err != nil {
				return nil, err
			}
			in.Mentions = append(in.Mentions, mentions...)
		case xml.EndElement:
			in.Text = text.String()
			return in, nil
		}
	}
}

func annotationMentions(se xml.StartElement, spot string, start, end int) ([]*mention.Mention, error) {
	if !hasAttr(se, "rank_0_id") {
		wid, err := strconv.Atoi(attr(se, "wid"))
		if err != nil {
			return nil, fmt.Errorf("%w: annotation %q: wid: %v", ErrMalformed, spot, err)
		}
		return []*mention.Mention{mention.New(spot, start, end, attr(se, "title"), wid)}, nil
	}

	var mentions []*mention.Mention
	for rank := 0; hasAttr(se, fmt.Sprintf("rank_%d_id", rank)); rank++ {
		prefix := fmt.Sprintf("rank_%d_", rank)

		wid, err := strconv.Atoi(attr(se, prefix+"id"))
		if err != nil {
			return nil, fmt.Errorf("%w: annotation %q rank %d: id: %v", ErrMalformed, spot, rank, err)
		}
		score, err := strconv.ParseFloat(attr(se, prefix+"score"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: annotation %q rank %d: score: %v", ErrMalformed, spot, rank, err)
		}

		m := mention.New(spot, start, end, attr(se, prefix+"title"), wid)
		m.Confidence = score
		mentions = append(mentions, m)
	}
	return mentions, nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func hasAttr(se xml.StartElement, name string) bool {
	return slices.ContainsFunc(se.Attr, func(a xml.Attr) bool {
		return a.Name.Local == name
	})
}
