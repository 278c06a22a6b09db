package main

import (
	"fmt"
	"io"

	"github.com/signadot/graphcodec/encode"
	"github.com/signadot/graphcodec/ir"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, args, err := pathArg("get", args)
	if err != nil {
		return err
	}
	return queryDocs(cfg.MainConfig, cc, args, path, false)
}

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	args, err := cfg.List.Parse(cc, args)
	if err != nil {
		cfg.List.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	path, args, err := pathArg("list", args)
	if err != nil {
		return err
	}
	return queryDocs(cfg.MainConfig, cc, args, path, true)
}

func pathArg(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: %s requires one argument, an object path", cli.ErrUsage, cmd)
	}
	path := args[0]
	if path == "" {
		return "", nil, fmt.Errorf("%w: invalid query \"\"", cli.ErrUsage)
	}
	if path[0] != '$' {
		path = "$" + path
	}
	return path, args[1:], nil
}

func queryDocs(cfg *MainConfig, cc *cli.Context, args []string, path string, list bool) error {
	w := cc.Out
	written := 0
	return eachDoc(cfg, cc, args, func(file string, _ int, doc *ir.Node) error {
		res, err := queryDoc(doc, path, list)
		if err != nil {
			return fmt.Errorf("error querying %s with %s: %w", file, path, err)
		}
		if res == nil {
			// don't encode anything and don't yell either
			return nil
		}
		if written > 0 {
			if err := writeSep(w); err != nil {
				return err
			}
		}
		written++
		return writeNode(cfg, w, res)
	})
}

func queryDoc(doc *ir.Node, path string, list bool) (*ir.Node, error) {
	if list {
		res, err := doc.ListPath(nil, path)
		if err != nil {
			return nil, err
		}
		return ir.FromSlice(res), nil
	}
	return doc.GetPath(path)
}

func writeNode(cfg *MainConfig, w io.Writer, node *ir.Node) error {
	if err := encode.Encode(node, w, cfg.encOpts(w)...); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
