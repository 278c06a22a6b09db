package main

import (
	"fmt"

	"github.com/signadot/graphcodec/encode"
	"github.com/signadot/graphcodec/ir"

	"github.com/scott-cotton/cli"
)

func view(cfg *ViewConfig, cc *cli.Context, args []string) error {
	args, err := cfg.View.Parse(cc, args)
	if err != nil {
		return err
	}
	w := cc.Out
	opts := cfg.encOpts(w)
	return eachDoc(cfg.MainConfig, cc, args, func(_ string, i int, node *ir.Node) error {
		if i > 0 {
			if err := writeSep(w); err != nil {
				return err
			}
		}
		if err := encode.Encode(node, w, opts...); err != nil {
			return fmt.Errorf("error encoding document %d: %w", i, err)
		}
		return nil
	})
}
