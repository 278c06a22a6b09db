package main

import (
	"fmt"
	"reflect"

	"github.com/signadot/graphcodec/codec"
	"github.com/signadot/graphcodec/ir"

	"github.com/scott-cotton/cli"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		cfg.Check.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	failed := 0
	err = eachDoc(cfg.MainConfig, cc, args, func(file string, i int, doc *ir.Node) error {
		ws, ok := checkDoc(doc, cfg.codecOpts()...)
		if !ok {
			failed++
		}
		if cfg.Quiet && ok && len(ws) == 0 {
			return nil
		}
		status := "ok"
		switch {
		case !ok:
			status = "failed"
		case len(ws) > 0:
			status = fmt.Sprintf("%d warnings", len(ws))
		}
		fmt.Fprintf(cc.Out, "%s[%d]: %s\n", file, i, status)
		for _, w := range ws {
			fmt.Fprintf(cc.Out, "\t%s\n", w)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// checkDoc decodes doc into a dynamic value and returns the warnings of the
// conversion.
func checkDoc(doc *ir.Node, opts ...codec.Option) ([]codec.Warning, bool) {
	var ws []codec.Warning
	opts = append(opts, codec.WithDiagnosticsHook(func(_ string, _ reflect.Type, got []codec.Warning) {
		ws = append(ws, got...)
	}))
	_, ok := codec.DeserializeNode[any](doc, nil, opts...)
	return ws, ok
}
