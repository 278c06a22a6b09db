package main

import (
	"fmt"

	"github.com/signadot/graphcodec/ir"
	"github.com/signadot/graphcodec/parse"

	"github.com/scott-cotton/cli"

	jsonpatch "github.com/evanphx/json-patch"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: patch requires a patch file and optional files to which to apply it", cli.ErrUsage)
	}
	pNode, err := getObjFile(cc, args[0], cfg.parseOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding patch %s: %w", args[0], err)
	}
	if pNode == nil {
		return fmt.Errorf("%w: empty patch %s", cli.ErrUsage, args[0])
	}
	pd, err := toJSON(pNode)
	if err != nil {
		return err
	}
	apply := func(d []byte) ([]byte, error) {
		return jsonpatch.MergePatch(d, pd)
	}
	if !cfg.Merge {
		ops, err := jsonpatch.DecodePatch(pd)
		if err != nil {
			return fmt.Errorf("%w: invalid json patch %s: %w", cli.ErrUsage, args[0], err)
		}
		apply = ops.Apply
	}
	w := cc.Out
	return eachDoc(cfg.MainConfig, cc, args[1:], func(_ string, i int, doc *ir.Node) error {
		d, err := toJSON(doc)
		if err != nil {
			return err
		}
		out, err := apply(d)
		if err != nil {
			return fmt.Errorf("error patching document %d: %w", i, err)
		}
		res, err := parse.Parse(out)
		if err != nil {
			return err
		}
		if i > 0 {
			if err := writeSep(w); err != nil {
				return err
			}
		}
		return writeNode(cfg.MainConfig, w, res)
	})
}
