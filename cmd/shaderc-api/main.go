package main

import (
	"flag"
	"log"
	"path/filepath"

	"go-shader-reflect/internal/api"
	"go-shader-reflect/internal/api/handler"
	"go-shader-reflect/internal/store"
	"go-shader-reflect/pkg/router"
	"go-shader-reflect/pkg/utils"
)

var (
	dbPath    = flag.String("db", "shaderc.db", "sqlite database holding recorded runs")
	addr      = flag.String("addr", "localhost:8080", "listen address")
	shaderDir = flag.String("shaders", "shaders", "directory holding the shader stage sources")
	objDir    = flag.String("obj", "obj", "existing directory receiving .spv artifacts")
	compiler  = flag.String("compiler", "glslangValidator", "GLSL to SPIR-V compiler binary")
	reflector = flag.String("reflector", "spirv-reflect", "SPIR-V reflection binary")
	timeout   = flag.String("timeout", "", "default timeout per tool invocation, e.g. 30s")
)

func main() {
	flag.Parse()

	// Runs started over the API only use these settings
	handler.RunDefaults.ShaderDir = filepath.Clean(*shaderDir)
	handler.RunDefaults.ObjDir = filepath.Clean(*objDir)
	handler.RunDefaults.CompilerBin = *compiler
	handler.RunDefaults.ReflectorBin = *reflector
	d, err := utils.ParseDuration(*timeout)
	if err != nil || d < 0 {
		log.Fatalf("invalid -timeout %q", *timeout)
	}
	handler.RunDefaults.Timeout = d

	if err := utils.NewOutputManager(handler.RunDefaults.ObjDir).CheckOutputDir(); err != nil {
		log.Fatalf("%v", err)
	}

	// Init DB
	if err := store.InitDB(*dbPath); err != nil {
		log.Fatalf("failed to open %s: %v", *dbPath, err)
	}
	defer store.Close()

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Start server
	if err := r.Start(*addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
