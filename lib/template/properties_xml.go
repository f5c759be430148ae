package template

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	propertiesXMLHeader  = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n"
	propertiesXMLDocType = `<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">` + "\n"
)

var errEntryWithoutKey = errors.New("entry without key")

// xmlProperties is the java.util.Properties XML document
type xmlProperties struct {
	XMLName xml.Name   `xml:"properties"`
	Comment *string    `xml:"comment"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Key   *string `xml:"key,attr"`
	Value string  `xml:",chardata"`
}

// LoadXML reads a properties XML document from r and stores its entries in the hash
func (p *Properties[K]) LoadXML(ctx context.Context, r io.Reader) error {
	var doc xmlProperties
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("could not parse properties: %w", err)
	}
	entries := make(map[string]string, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.Key == nil {
			return fmt.Errorf("could not parse properties: %w (entry %d)", errEntryWithoutKey, i)
		}
		entries[*e.Key] = e.Value
	}
	return p.putAll(ctx, entries)
}

// StoreXML writes the fields of the hash to w as a properties XML document.
// A non empty comment is written as the comment element.
func (p *Properties[K]) StoreXML(ctx context.Context, w io.Writer, comment string) error {
	entries, err := p.hash.Entries(ctx, p.key)
	if err != nil {
		return err
	}
	doc := xmlProperties{Entries: make([]xmlEntry, 0, len(entries))}
	if comment != "" {
		if !validXMLText(comment) {
			return fmt.Errorf("%w: comment", ErrUnstorableProperty)
		}
		doc.Comment = &comment
	}
	for _, e := range entries {
		if !validXMLText(e.Key) || !validXMLText(e.Value) {
			return fmt.Errorf("%w: %q", ErrUnstorableProperty, e.Key)
		}
		doc.Entries = append(doc.Entries, xmlEntry{Key: &e.Key, Value: e.Value})
	}

	var sb strings.Builder
	sb.WriteString(propertiesXMLHeader)
	sb.WriteString(propertiesXMLDocType)
	enc := xml.NewEncoder(&sb)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("could not write properties: %w", err)
	}
	sb.WriteString("\n")
	_, err = io.WriteString(w, sb.String())
	return err
}

// validXMLText reports whether s only holds characters an XML 1.0 document can carry
func validXMLText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == 0x09 || r == 0x0A || r == 0x0D:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
