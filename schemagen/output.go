package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/valyala/fastjson"
	"gopkg.in/yaml.v3"

	"github.com/siegeai/schemagen/jsonschema"
)

type printer struct {
	w      io.Writer
	format string
	pretty bool
}

func (p *printer) schema(s jsonschema.Schema) error {
	b, err := p.render(s, p.pretty)
	if err != nil {
		return err
	}
	_, err = p.w.Write(b)
	return err
}

func (p *printer) render(s jsonschema.Schema, pretty bool) ([]byte, error) {
	raw := []byte("null")
	if s != nil {
		raw = jsonschema.Marshal(s)
	}

	if p.format == "yaml" {
		return toYAML(raw)
	}

	if !pretty {
		return append(raw, '\n'), nil
	}
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (p *printer) diff(a, b jsonschema.Schema) error {
	left, err := p.render(a, true)
	if err != nil {
		return err
	}
	right, err := p.render(b, true)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(left), string(right))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	if p.pretty {
		_, err = fmt.Fprintln(p.w, dmp.DiffPrettyText(diffs))
		return err
	}
	_, err = io.WriteString(p.w, unified(diffs))
	return err
}

func unified(diffs []diffmatchpatch.Diff) string {
	sb := &strings.Builder{}
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// toYAML converts a JSON document to YAML keeping object key order.
func toYAML(raw []byte) ([]byte, error) {
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(v)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlNode(v *fastjson.Value) *yaml.Node {
	switch v.Type() {
	case fastjson.TypeObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		v.GetObject().Visit(func(key []byte, val *fastjson.Value) {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(key)},
				yamlNode(val))
		})
		return n
	case fastjson.TypeArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.GetArray() {
			n.Content = append(n.Content, yamlNode(e))
		}
		return n
	case fastjson.TypeString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(v.GetStringBytes())}
	case fastjson.TypeNumber:
		tag := "!!float"
		if _, err := v.Int64(); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}
	case fastjson.TypeTrue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
	case fastjson.TypeFalse:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
