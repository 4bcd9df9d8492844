package appearance

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// The server delivers appearance overrides as one XML blob over the
// same socket as the scene data (a ConfigXml response). Layout:
//
//	<scene>
//	  <object name="anymal">
//	    <material>gray</material>
//	    <appearance shape="sphere" dims="0.5" material="red"/>
//	    <appearance shape="mesh" file="body.obj" dims="1 1 1"/>
//	  </object>
//	</scene>

type xmlDocument struct {
	XMLName xml.Name    `xml:"scene"`
	Objects []xmlObject `xml:"object"`
}

type xmlObject struct {
	Name        string          `xml:"name,attr"`
	Material    string          `xml:"material"`
	Appearances []xmlAppearance `xml:"appearance"`
}

type xmlAppearance struct {
	Shape    string `xml:"shape,attr"`
	Dims     string `xml:"dims,attr"`
	Material string `xml:"material,attr"`
	File     string `xml:"file,attr"`
}

// LoadXML parses a config document and replaces the registry contents
// with the overrides it declares. A sub-appearance with an unrecognized
// shape name is kept with KindUnknown so the violation surfaces when
// (and only when) the object is actually constructed.
func (r *Registry) LoadXML(doc []byte) error {
	var parsed xmlDocument
	if err := xml.Unmarshal(doc, &parsed); err != nil {
		return fmt.Errorf("parse appearance config: %w", err)
	}

	r.Reset()
	for _, obj := range parsed.Objects {
		a := &Appearance{
			Name:     obj.Name,
			Material: strings.TrimSpace(obj.Material),
		}
		for _, sub := range obj.Appearances {
			dims, err := parseDims(sub.Dims)
			if err != nil {
				return fmt.Errorf("object %q: %w", obj.Name, err)
			}
			a.Subs = append(a.Subs, SubAppearance{
				Kind:     parseShapeKind(sub.Shape),
				Dims:     dims,
				Material: strings.TrimSpace(sub.Material),
				FileName: strings.TrimSpace(sub.File),
			})
		}
		r.Put(a)
	}
	return nil
}

// parseDims splits a whitespace-separated list of floats.
func parseDims(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	dims := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", f, err)
		}
		dims[i] = v
	}
	return dims, nil
}
