package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/signadot/graphcodec/encode"
	"github.com/signadot/graphcodec/format"
	"github.com/signadot/graphcodec/ir"
	"github.com/signadot/graphcodec/parse"

	"github.com/scott-cotton/cli"
)

var docSep = []byte("\n---\n")

func readArg(cc *cli.Context, path string) ([]byte, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return d, nil
}

func getObjFile(cc *cli.Context, path string, opts ...parse.ParseOption) (*ir.Node, error) {
	d, err := readArg(cc, path)
	if err != nil {
		return nil, err
	}
	return parse.Parse(d, opts...)
}

// getDocs parses the "---" separated documents of path. Empty documents are
// skipped.
func getDocs(cfg *MainConfig, cc *cli.Context, path string) ([]*ir.Node, error) {
	d, err := readArg(cc, path)
	if err != nil {
		return nil, err
	}
	parts := [][]byte{d}
	if !cfg.inFormat().Binary() {
		parts = bytes.Split(d, docSep)
	}
	var res []*ir.Node
	for i, part := range parts {
		node, err := parse.Parse(part, cfg.parseOpts()...)
		if err != nil {
			return nil, fmt.Errorf("error decoding document %d of %s: %w", i, path, err)
		}
		if node == nil {
			continue
		}
		res = append(res, node)
	}
	return res, nil
}

// eachDoc calls f on every document of the files in args, or of stdin when
// there are none.
func eachDoc(cfg *MainConfig, cc *cli.Context, args []string, f func(file string, i int, node *ir.Node) error) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	n := 0
	for _, file := range args {
		docs, err := getDocs(cfg, cc, file)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := f(file, n, doc); err != nil {
				return fmt.Errorf("error processing %s: %w", file, err)
			}
			n++
		}
	}
	return nil
}

func writeSep(w io.Writer) error {
	_, err := w.Write(docSep[1:])
	return err
}

func toJSON(node *ir.Node) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(node, buf, encode.EncodeFormat(format.JSONFormat), encode.EncodeWire(true)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
