package dataset

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nopper/wikibench/mention"
)

// Field numbers of the binary layout.
//
//	message Dataset  { string name = 1; repeated Instance instances = 2; }
//	message Instance { int64 id = 1; string text = 2; repeated Mention mentions = 3; }
//	message Mention  {
//	  int64 start = 1; int64 end = 2; string spot = 3; string title = 4;
//	  sint64 entity_id = 5; repeated sint64 candidates = 6;
//	  double confidence = 7; double coherence = 8;
//	}
const (
	fieldDatasetName     protowire.Number = 1
	fieldDatasetInstance protowire.Number = 2

	fieldInstanceID      protowire.Number = 1
	fieldInstanceText    protowire.Number = 2
	fieldInstanceMention protowire.Number = 3

	fieldMentionStart      protowire.Number = 1
	fieldMentionEnd        protowire.Number = 2
	fieldMentionSpot       protowire.Number = 3
	fieldMentionTitle      protowire.Number = 4
	fieldMentionEntityID   protowire.Number = 5
	fieldMentionCandidates protowire.Number = 6
	fieldMentionConfidence protowire.Number = 7
	fieldMentionCoherence  protowire.Number = 8
)

// Load reads a binary dataset file.
func Load(path string) (*mention.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}

	ds, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing protobuf: %w", err)
	}
	return ds, nil
}

// Save writes ds as a binary dataset file.
func Save(ds *mention.Dataset, path string) error {
	if err := os.WriteFile(path, Marshal(ds), 0o644); err != nil {
		return fmt.Errorf("writing dataset file: %w", err)
	}
	return nil
}

// Marshal encodes ds in the protobuf wire format.
func Marshal(ds *mention.Dataset) []byte {
	var b []byte
	b = appendString(b, fieldDatasetName, ds.Name)
	for _, in := range ds.Instances {
		b = protowire.AppendTag(b, fieldDatasetInstance, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalInstance(in))
	}
	return b
}

func marshalInstance(in *mention.Instance) []byte {
	var b []byte
	b = appendVarint(b, fieldInstanceID, uint64(in.ID))
	b = appendString(b, fieldInstanceText, in.Text)
	for _, m := range in.Mentions {
		b = protowire.AppendTag(b, fieldInstanceMention, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalMention(m))
	}
	return b
}

func marshalMention(m *mention.Mention) []byte {
	var b []byte
	b = appendVarint(b, fieldMentionStart, uint64(m.Start))
	b = appendVarint(b, fieldMentionEnd, uint64(m.End))
	b = appendString(b, fieldMentionSpot, m.Spot)
	b = appendString(b, fieldMentionTitle, m.Title)
	b = appendVarint(b, fieldMentionEntityID, protowire.EncodeZigZag(int64(m.EntityID)))

	if len(m.Candidates) > 0 {
		var packed []byte
		for _, c := range m.Candidates {
			packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(c)))
		}
		b = protowire.AppendTag(b, fieldMentionCandidates, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	b = protowire.AppendTag(b, fieldMentionConfidence, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Confidence))
	b = protowire.AppendTag(b, fieldMentionCoherence, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Coherence))
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// Unmarshal decodes a dataset encoded by Marshal. Unknown fields are
// skipped.
func Unmarshal(data []byte) (*mention.Dataset, error) {
	ds := &mention.Dataset{}

	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch {
		case num == fieldDatasetName && typ == protowire.BytesType:
			ds.Name = string(v.bytes)
		case num == fieldDatasetInstance && typ == protowire.BytesType:
			in, err := unmarshalInstance(v.bytes)
			if err != nil {
				return fmt.Errorf("instance %d: %w", len(ds.Instances), err)
			}
			ds.Instances = append(ds.Instances, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func unmarshalInstance(data []byte) (*mention.Instance, error) {
	in := &mention.Instance{}

	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch {
		case num == fieldInstanceID && typ == protowire.VarintType:
			in.ID = int(int64(v.varint))
		case num == fieldInstanceText && typ == protowire.BytesType:
			in.Text = string(v.bytes)
		case num == fieldInstanceMention && typ == protowire.BytesType:
			m, err := unmarshalMention(v.bytes)
			if err != nil {
				return fmt.Errorf("mention %d: %w", len(in.Mentions), err)
			}
			in.Mentions = append(in.Mentions, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func unmarshalMention(data []byte) (*mention.Mention, error) {
	m := &mention.Mention{EntityID: mention.NoEntity}

	err := walkFields(data, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch {
		case num == fieldMentionStart && typ == protowire.VarintType:
			m.Start = int(int64(v.varint))
		case num == fieldMentionEnd && typ == protowire.VarintType:
			m.End = int(int64(v.varint))
		case num == fieldMentionSpot && typ == protowire.BytesType:
			m.Spot = string(v.bytes)
		case num == fieldMentionTitle && typ == protowire.BytesType:
			m.Title = string(v.bytes)
		case num == fieldMentionEntityID && typ == protowire.VarintType:
			m.EntityID = int(protowire.DecodeZigZag(v.varint))
		case num == fieldMentionCandidates && typ == protowire.BytesType:
			for packed := v.bytes; len(packed) > 0; {
				c, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return fmt.Errorf("%w: candidates: %v", ErrMalformed, protowire.ParseError(n))
				}
				m.Candidates = append(m.Candidates, int(protowire.DecodeZigZag(c)))
				packed = packed[n:]
			}
		case num == fieldMentionCandidates && typ == protowire.VarintType:
			m.Candidates = append(m.Candidates, int(protowire.DecodeZigZag(v.varint)))
		case num == fieldMentionConfidence && typ == protowire.Fixed64Type:
			m.Confidence = math.Float64frombits(v.varint)
		case num == fieldMentionCoherence && typ == protowire.Fixed64Type:
			m.Coherence = math.Float64frombits(v.varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}

// fieldValue holds a decoded scalar (varint or fixed) or a length-delimited
// payload.
type fieldValue struct {
	varint uint64
	bytes  []byte
}

// walkFields decodes every field of a message and hands it to fn. Groups
// and fixed32 values are consumed and ignored.
func walkFields(data []byte, fn func(protowire.Number, protowire.Type, fieldValue) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		var v fieldValue
		switch typ {
		case protowire.VarintType:
			v.varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed64Type:
			v.varint, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			v.bytes, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		data = data[n:]

		if err := fn(num, typ, v); err != nil {
			return err
		}
	}
	return nil
}
