// Command shaderc compiles the shader stages found in a directory, reflects
// the SPIR-V output and prints the descriptor binding layout of every
// pipeline.
//
// Usage:
//
//	shaderc [options]
//
// Examples:
//
//	shaderc                                # shaders/ -> obj/, first-stage layout
//	shaderc -mode merge-union -format json # merged layout as JSON
//	shaderc -db shaderc.db                 # also record the run
package main

import (
	"context"
	"os"
	"os/signal"

	"go-shader-reflect/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
