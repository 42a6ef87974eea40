package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/valyala/fastjson"

	"github.com/siegeai/schemagen/jsonschema"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type config struct {
	mode   string
	format string
	diff   bool
	opts   jsonschema.Options
	inputs []string
}

func parseFlags(args []string) (*config, error) {
	c := &config{}
	fs := flag.NewFlagSet("schemagen", flag.ContinueOnError)
	fs.StringVar(&c.mode, "mode", "create", "create, compound, merge, equal or subset")
	fs.StringVar(&c.format, "o", "json", "output format, json or yaml")
	fs.BoolVar(&c.diff, "diff", false, "show a diff of the two schemas when equal or subset fails")
	fs.BoolVar(&c.opts.NoRequired, "no-required", false, "never emit required")
	fs.BoolVar(&c.opts.RestrictiveArrays, "restrictive-arrays", false, "emit minItems on generated arrays")
	fs.BoolVar(&c.opts.RestrictiveNulls, "restrictive-nulls", false, "emit nullable on every generated node")
	fs.BoolVar(&c.opts.MergeToLessRestrictive, "less-restrictive", false, "resolve join conflicts to the permissive side")
	fs.BoolVar(&c.opts.IgnoreRequired, "ignore-required", false, "ignore required when comparing")
	fs.BoolVar(&c.opts.SubsetRequired, "subset-required", false, "compare required one way")
	additional := fs.String("additional-properties", "", "emit additionalProperties=true|false on generated objects")
	minItems := fs.Int("min-items", -1, "minItems to use instead of the observed length")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.inputs = fs.Args()

	if *additional != "" {
		b, err := strconv.ParseBool(*additional)
		if err != nil {
			return nil, fmt.Errorf("additional-properties: %w", err)
		}
		c.opts.AdditionalProperties = jsonschema.Bool(b)
	}
	if *minItems >= 0 {
		c.opts.MinItemsOverride = jsonschema.Int(*minItems)
	}
	if c.format != "json" && c.format != "yaml" {
		return nil, fmt.Errorf("unknown output format %q", c.format)
	}
	return c, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	c, err := parseFlags(args)
	if err != nil {
		return err
	}

	docs, err := readInputs(c.inputs, stdin)
	if err != nil {
		return err
	}

	pretty := false
	if f, ok := stdout.(*os.File); ok {
		pretty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	out := &printer{w: stdout, format: c.format, pretty: pretty}

	switch c.mode {
	case "create":
		if len(docs) != 1 {
			return errors.New("create takes exactly one sample")
		}
		s, err := jsonschema.ParseSampleBytes(docs[0], c.opts)
		if err != nil {
			return err
		}
		return out.schema(s)

	case "compound":
		values, err := readSamples(docs)
		if err != nil {
			return err
		}
		s, err := jsonschema.CreateCompoundSchema(values, c.opts)
		if err != nil {
			return err
		}
		return out.schema(s)

	case "merge":
		schemas, err := readSchemas(docs)
		if err != nil {
			return err
		}
		return out.schema(jsonschema.MergeSchemas(schemas, c.opts))

	case "equal", "subset":
		schemas, err := readSchemas(docs)
		if err != nil {
			return err
		}
		if len(schemas) != 2 {
			return fmt.Errorf("%s takes exactly two schemas", c.mode)
		}
		var ok bool
		if c.mode == "equal" {
			ok = jsonschema.AreSchemasEqual(schemas[0], schemas[1], c.opts)
		} else {
			ok = jsonschema.IsSubset(schemas[0], schemas[1], c.opts)
		}
		if _, err := fmt.Fprintln(stdout, ok); err != nil {
			return err
		}
		if !ok && c.diff {
			return out.diff(schemas[0], schemas[1])
		}
		return nil
	}

	return fmt.Errorf("unknown mode %q", c.mode)
}

// readInputs reads every named file, or stdin when there are none.
func readInputs(paths []string, stdin io.Reader) ([][]byte, error) {
	if len(paths) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return [][]byte{b}, nil
	}
	docs := make([][]byte, len(paths))
	for i, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs[i] = b
	}
	return docs, nil
}

// readSamples flattens documents that each hold a JSON array of samples.
func readSamples(docs [][]byte) ([]any, error) {
	var values []any
	for i, doc := range docs {
		v, err := fastjson.ParseBytes(doc)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		elems, err := v.Array()
		if err != nil {
			return nil, fmt.Errorf("input %d: expected an array of samples", i)
		}
		for _, e := range elems {
			values = append(values, e)
		}
	}
	return values, nil
}

// readSchemas reads one schema per document; a single document holding an array is read as
// a list of schemas.
func readSchemas(docs [][]byte) ([]jsonschema.Schema, error) {
	var res []jsonschema.Schema
	for i, doc := range docs {
		v, err := fastjson.ParseBytes(doc)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		items := []*fastjson.Value{v}
		if v.Type() == fastjson.TypeArray {
			items, _ = v.Array()
		}
		for _, item := range items {
			s, err := jsonschema.FromFastJSON(item)
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			res = append(res, s)
		}
	}
	return res, nil
}
