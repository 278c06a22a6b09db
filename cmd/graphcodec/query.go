package main

import (
	"errors"
	"fmt"

	"github.com/signadot/graphcodec/codec"
	"github.com/signadot/graphcodec/ir"

	"github.com/scott-cotton/cli"

	"github.com/expr-lang/expr"
)

var errDecode = errors.New("document could not be decoded")

func query(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		cfg.Query.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("%w: query requires an expression", cli.ErrUsage)
	}
	src := args[0]
	opts := cfg.codecOpts()
	w := cc.Out
	var last *ir.Node
	err = eachDoc(cfg.MainConfig, cc, args[1:], func(_ string, i int, doc *ir.Node) error {
		res, err := evalDoc(src, doc, opts...)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		last = res
		if i > 0 {
			if err := writeSep(w); err != nil {
				return err
			}
		}
		return writeNode(cfg.MainConfig, w, res)
	})
	if err != nil {
		return err
	}
	if cfg.Exit && !ir.Truth(last) {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// evalDoc decodes doc through the codec, evaluates src with the decoded
// value bound to doc and converts the result back into a document.
func evalDoc(src string, doc *ir.Node, opts ...codec.Option) (*ir.Node, error) {
	v, ok := codec.DeserializeNode[any](doc, nil, opts...)
	if !ok {
		return nil, errDecode
	}
	env := map[string]any{"doc": v}
	prg, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(prg, env)
	if err != nil {
		return nil, err
	}
	res, ok := codec.SerializeNode(out, opts...)
	if !ok {
		return nil, fmt.Errorf("result of type %T could not be serialized", out)
	}
	return res, nil
}
