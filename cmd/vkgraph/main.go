// Command vkgraph builds a small object graph on the selected backend,
// prints the live dependency graph and tears everything down again.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"vkgraph/src/config"
	"vkgraph/src/render"
	"vkgraph/src/render/metrics"
	"vkgraph/src/render/native"
	"vkgraph/src/render/native/nativetest"
	"vkgraph/src/render/native/vulkan"
)

type backend interface {
	native.Driver
	native.Allocator
}

func main() {
	var (
		envFile     = flag.String("env", "", "optional .env file")
		backendName = flag.String("backend", "", "fake or vulkan (overrides VKGRAPH_BACKEND)")
		dump        = flag.String("dump", "", "yaml or none (overrides VKGRAPH_DUMP)")
		metricsAddr = flag.String("metrics", "", "serve metrics on this address (overrides VKGRAPH_METRICS_ADDR)")
		shader      = flag.String("shader", "", "SPIR-V compute shader for the demo pipeline")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backendName
		case "dump":
			cfg.Dump = *dump
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	render.SetLogger(logger)

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector("vkgraph")
		render.SetMetrics(collector)
	}

	drv, err := open(cfg.Backend)
	if err != nil {
		logger.Fatal("open backend", zap.String("backend", cfg.Backend), zap.Error(err))
	}

	if err := run(cfg, drv, *shader); err != nil {
		logger.Fatal("demo failed", zap.Error(err))
	}
	if fake, ok := drv.(*nativetest.Driver); ok {
		fmt.Println("destroyed:", destroyOrder(fake))
		if v := fake.Violations(); len(v) > 0 {
			logger.Fatal("ordering violations", zap.Strings("violations", v))
		}
	}

	if collector != nil {
		serve(logger, cfg.MetricsAddr, collector)
	}
}

func open(name string) (backend, error) {
	switch name {
	case config.BackendVulkan:
		return vulkan.Open()
	default:
		return nativetest.New(), nil
	}
}

// run builds the demo graph. Every wrapper is released by a deferred call,
// so the graph comes down in reverse order when run returns.
func run(cfg config.Config, drv backend, shaderPath string) (err error) {
	defer render.CheckError(&err)

	opts := render.DefaultContextOptions()
	opts.Instance.ApplicationName = cfg.AppName
	opts.Instance.ApiVersion = cfg.Version()
	opts.Instance.Layers = cfg.Layers()
	opts.Debug = cfg.Validation
	if cfg.Validation {
		opts.Instance.Extensions = append(opts.Instance.Extensions, "VK_EXT_debug_report")
	}
	ctx, err := render.NewContext(drv, drv, opts)
	render.OrPanic(err)
	defer func() { err = errors.Join(err, ctx.Close()) }()

	dev := ctx.Device()
	render.Logger().Info("device selected",
		zap.String("name", ctx.PhysicalDevice().Properties().Name),
		zap.Stringer("type", ctx.PhysicalDevice().Properties().Type))

	props := render.DefaultBufferProperties(1024)
	props.Usage |= native.BufferUsageStorageTexelBuffer
	buf, err := render.NewBuffer(ctx.Allocator(), props, render.HostAllocationProperties())
	render.OrPanic(err)
	defer buf.Release()
	render.OrPanic(buf.Memory().Write(0, []byte("vkgraph")))

	texel, err := render.NewBufferView(buf, render.DefaultBufferViewProperties(native.FormatR32Sfloat))
	render.OrPanic(err)
	defer texel.Release()

	img, err := render.NewImage(ctx.Allocator(), render.DefaultImageProperties(native.FormatR8G8B8A8Unorm, 64, 64), render.DefaultAllocationProperties())
	render.OrPanic(err)
	defer img.Release()
	view, err := render.NewImageView(img, render.ImageViewPropertiesFor(img.Properties()))
	render.OrPanic(err)
	defer view.Release()

	sampler, err := render.NewSampler(dev, render.DefaultSamplerProperties())
	render.OrPanic(err)
	defer sampler.Release()

	layout, err := render.NewDescriptorSetLayout(dev, render.DescriptorSetLayoutProperties{
		Bindings: []render.DescriptorSetLayoutBinding{
			{Binding: 0, Type: native.DescriptorTypeStorageBuffer, Count: 1, StageFlags: native.ShaderStageCompute},
			{Binding: 1, Type: native.DescriptorTypeCombinedImageSampler, Count: 1, StageFlags: native.ShaderStageCompute, ImmutableSamplers: []*render.Sampler{sampler}},
		},
	})
	render.OrPanic(err)
	defer layout.Release()

	pool, err := render.NewDescriptorPool(dev, render.DefaultDescriptorPoolProperties(2,
		native.DescriptorPoolSize{Type: native.DescriptorTypeStorageBuffer, DescriptorCount: 2},
		native.DescriptorPoolSize{Type: native.DescriptorTypeCombinedImageSampler, DescriptorCount: 2}))
	render.OrPanic(err)
	defer pool.Release()
	sets, err := pool.AllocateDescriptorSets(layout)
	render.OrPanic(err)
	defer releaseAll(sets)

	pipelineLayout, err := render.NewPipelineLayout(dev, render.PipelineLayoutProperties{
		SetLayouts: []*render.DescriptorSetLayout{layout},
	})
	render.OrPanic(err)
	defer pipelineLayout.Release()

	if code, ok, err := shaderCode(cfg, shaderPath); err != nil {
		render.OrPanic(err)
	} else if ok {
		module, err := render.NewShaderModule(dev, code)
		render.OrPanic(err)
		defer module.Release()
		pipeline, err := render.NewComputePipeline(pipelineLayout, nil, render.ComputePipelineProperties{
			Stage: render.ShaderStage{Stage: native.ShaderStageCompute, Module: module},
		})
		render.OrPanic(err)
		defer pipeline.Release()
	}

	cmds, err := ctx.CommandPool().AllocateCommandBuffers(native.CommandBufferLevelPrimary, 2)
	render.OrPanic(err)
	defer releaseAll(cmds)

	fence, err := render.NewFence(dev, render.FenceProperties{Flags: native.FenceCreateSignaled})
	render.OrPanic(err)
	defer fence.Release()
	_, err = fence.Wait(time.Second)
	render.OrPanic(err)

	sem, err := render.NewSemaphore(dev, render.SemaphoreProperties{})
	render.OrPanic(err)
	defer sem.Release()

	if cfg.Dump == config.DumpYAML {
		render.OrPanic(render.DumpGraph(os.Stdout))
	}
	return nil
}

// shaderCode loads the demo shader. The fake backend gets a header-only
// module when no file is given; a real driver needs a real shader.
func shaderCode(cfg config.Config, path string) (render.ShaderModuleProperties, bool, error) {
	if path == "" {
		if cfg.Backend == config.BackendFake {
			return render.ShaderModuleProperties{Code: []uint32{0x07230203, 0x00010000, 0, 1, 0}}, true, nil
		}
		return render.ShaderModuleProperties{}, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return render.ShaderModuleProperties{}, false, err
	}
	props, err := render.ShaderModulePropertiesFromSPIRV(b)
	return props, err == nil, err
}

func releaseAll[T render.Object](objs []T) {
	for _, o := range objs {
		o.Release()
	}
}

func destroyOrder(drv *nativetest.Driver) string {
	var ops []string
	for _, e := range drv.Events() {
		if strings.HasPrefix(e.Op, "Destroy") || strings.HasPrefix(e.Op, "Free") {
			ops = append(ops, e.String())
		}
	}
	return strings.Join(ops, " ")
}

// serve exposes the collected metrics until interrupted.
func serve(logger *zap.Logger, addr string, c *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
			stop()
		}
	}()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdown)
}
