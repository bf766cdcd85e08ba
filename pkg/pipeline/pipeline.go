package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/crafter/pkg/archive"
	"github.com/provide-io/crafter/pkg/config"
	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
	"github.com/provide-io/crafter/pkg/launch"
	"github.com/provide-io/crafter/pkg/meta"
	"github.com/provide-io/crafter/pkg/profile"
)

// Pipeline installs and launches one profile.
type Pipeline struct {
	env     *Env
	profile profile.Profile
	paths   *profile.Paths
	logger  hclog.Logger

	// Stdio of the game process; nil means the launcher's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	mu         sync.Mutex
	state      State
	descriptor *meta.ClientDescriptor
}

// New creates an Uninitialized pipeline for the registered profile name.
func New(env *Env, name string) (*Pipeline, error) {
	p, paths, err := env.Profile(name)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		env:     env,
		profile: p,
		paths:   paths,
		logger:  env.logger.Named("pipeline").With("profile", p.Name),
	}, nil
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) advance(from, to State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := transition(&p.state, from, to); err != nil {
		return err
	}
	p.logger.Trace("🔀 State", "from", from.String(), "to", to.String())
	return nil
}

func (p *Pipeline) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running {
		p.state = Uninitialized
	}
}

// Install makes every file the profile needs present on disk, in stage
// order: descriptor, asset index and objects, libraries and natives, client
// jar. Each file already on disk is reused, so an interrupted install
// resumes and a complete one makes no network requests. On error the
// pipeline returns to Uninitialized; files fetched so far are kept.
func (p *Pipeline) Install(ctx context.Context) error {
	if err := p.advance(p.State(), Uninitialized); err != nil {
		return err
	}

	lock, err := profile.TryLock(p.paths, p.logger)
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := p.install(ctx); err != nil {
		p.reset()
		if merr := profile.MarkIncomplete(p.paths); merr != nil {
			p.logger.Debug("⚠️ Failed to clear completion marker", "error", merr)
		}
		return err
	}

	if err := profile.MarkComplete(p.paths, p.profile.Version); err != nil {
		p.logger.Warn("⚠️ Failed to write completion marker", "error", err)
	}
	p.logger.Info("✅ Profile installed", "version", p.profile.Version)
	return nil
}

func (p *Pipeline) install(ctx context.Context) error {
	p.logger.Info("📥 Installing profile", "version", p.profile.Version)

	desc, err := p.env.descriptor(ctx, p.profile, p.paths)
	if err != nil {
		return err
	}
	p.descriptor = desc
	if err := p.advance(Uninitialized, DescriptorReady); err != nil {
		return err
	}

	if err := p.installAssets(ctx); err != nil {
		return err
	}
	if err := p.advance(DescriptorReady, AssetsInstalled); err != nil {
		return err
	}

	if err := p.installLibraries(ctx); err != nil {
		return err
	}
	if err := p.advance(AssetsInstalled, LibrariesInstalled); err != nil {
		return err
	}

	client := p.descriptor.Downloads.Client
	client.Path = ""
	if _, err := p.env.Orchestrator.FetchOrCached(ctx, client, p.paths.ClientJar()); err != nil {
		return fmt.Errorf("client jar: %w", err)
	}
	if err := p.advance(LibrariesInstalled, ClientJarInstalled); err != nil {
		return err
	}

	return p.advance(ClientJarInstalled, Ready)
}

// assetIndexName keys the index file and ${assets_index_name} on the
// descriptor's assets field, falling back to the index id.
func (p *Pipeline) assetIndexName() string {
	if name := p.descriptor.Assets; name != "" {
		return name
	}
	return p.descriptor.AssetIndex.ID
}

func (p *Pipeline) installAssets(ctx context.Context) error {
	layout := p.env.Layout
	name := p.assetIndexName()
	ref := meta.Download{Path: name + ".json", URL: p.descriptor.AssetIndex.URL}

	data, err := p.env.Orchestrator.FetchOrCached(ctx, ref, layout.AssetIndexes())
	if err != nil {
		return fmt.Errorf("asset index %s: %w", name, err)
	}
	index, err := meta.DecodeAssetIndex(data, ref.URL)
	if err != nil {
		return err
	}

	objects := index.UniqueObjects()
	p.logger.Debug("🎨 Installing assets", "index", name, "objects", len(objects))

	failed, err := download.RunBatch(ctx, objects, p.env.Settings.AssetConcurrency, func(ctx context.Context, obj meta.AssetObject) error {
		dl := meta.Download{Path: obj.StoragePath(), URL: obj.URL(p.env.Settings.AssetURL)}
		_, err := p.env.Orchestrator.FetchOrCached(ctx, dl, layout.Assets())
		return err
	})
	if failed != nil {
		return fmt.Errorf("asset %s: %w", failed.Item.Hash, err)
	}
	return err
}

func (p *Pipeline) installLibraries(ctx context.Context) error {
	libsRoot := p.env.Layout.Libraries()
	libs := p.descriptor.AllowedLibraries(p.env.Platform)
	p.logger.Debug("📚 Installing libraries", "count", len(libs))

	failed, err := download.RunBatch(ctx, libs, p.env.Settings.LibraryConcurrency, func(ctx context.Context, lib meta.Library) error {
		if art := lib.Downloads.Artifact; art != nil {
			if _, err := p.env.Orchestrator.FetchOrCached(ctx, *art, libsRoot); err != nil {
				return err
			}
		}

		native, err := lib.PlatformNative(p.env.Platform)
		if err != nil || native == nil {
			return err
		}
		data, err := p.env.Orchestrator.FetchOrCached(ctx, *native, libsRoot)
		if err != nil {
			return err
		}
		return archive.Extract(data, p.paths.Natives(), lib.ExtractExcludes(), p.logger)
	})
	if failed != nil {
		return fmt.Errorf("library %s: %w", failed.Item.Name, err)
	}
	return err
}

// command builds the game's argument list from the merged configuration:
// heap flags, extra jvm_args, templated JVM tokens, the main class and
// templated game tokens. It also returns the Java binary to run.
func (p *Pipeline) command(cfg config.Config) (javaPath string, argv []string, err error) {
	javaPath, err = cfg.Require(config.KeyJavaPath)
	if err != nil {
		return "", nil, err
	}
	minRAM, err := cfg.Require(config.KeyMinRAM)
	if err != nil {
		return "", nil, err
	}
	maxRAM, err := cfg.Require(config.KeyMaxRAM)
	if err != nil {
		return "", nil, err
	}
	var extra []string
	if raw, ok := cfg.Get(config.KeyJVMArgs); ok {
		if extra, err = launch.SplitArgs(raw); err != nil {
			return "", nil, &crerrors.ConfigError{Key: config.KeyJVMArgs, Err: err}
		}
	}

	plat := p.env.Platform
	classpath, err := launch.BuildClasspath(p.descriptor.AllowedLibraries(plat), plat, p.env.Layout.Libraries(), p.paths.ClientJar())
	if err != nil {
		return "", nil, err
	}

	tctx := &launch.Context{
		GameDirectory:    p.paths.Dir(),
		AssetsRoot:       p.env.Layout.Assets(),
		AssetsIndexName:  p.assetIndexName(),
		VersionName:      p.profile.Version,
		Classpath:        classpath,
		NativesDirectory: p.paths.Natives(),
		Config:           cfg,
	}
	jvm, game := p.descriptor.Arguments.Tokens(plat)

	argv = []string{fmt.Sprintf("-Xmx%sM", maxRAM), fmt.Sprintf("-Xms%sM", minRAM)}
	argv = append(argv, extra...)
	argv = append(argv, launch.Assemble(launch.Substitute(jvm, tctx), p.descriptor.MainClass, launch.Substitute(game, tctx))...)
	return javaPath, argv, nil
}

// Execute runs the game and waits for it to exit. The pipeline must be
// Ready; calling Execute in any other state is a programming error and
// panics. A non-zero exit is reported as a LaunchError.
func (p *Pipeline) Execute(ctx context.Context) error {
	if st := p.State(); st != Ready {
		panic(fmt.Sprintf("pipeline: Execute called in state %s", st))
	}

	profileCfg, err := profile.LoadConfig(p.paths)
	if err != nil {
		return err
	}
	cfg := config.Merge(p.env.Global, profileCfg)

	javaPath, argv, err := p.command(cfg)
	if err != nil {
		return err
	}
	if err := p.advance(Ready, Running); err != nil {
		return err
	}

	logArgvTrace(javaPath, argv, secretValues(cfg), p.logger)
	logEnvironmentTrace(os.Environ(), p.logger)

	err = spawn(ctx, p.spawnOptions(javaPath, argv), p.logger)
	if err != nil {
		_ = p.advance(Running, Failed)
		return err
	}
	return p.advance(Running, Succeeded)
}

func (p *Pipeline) spawnOptions(javaPath string, argv []string) spawnOptions {
	opts := spawnOptions{path: javaPath, args: argv, dir: p.paths.Dir(), stdin: p.Stdin, stdout: p.Stdout, stderr: p.Stderr}
	if opts.stdin == nil {
		opts.stdin = os.Stdin
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}
	if opts.stderr == nil {
		opts.stderr = os.Stderr
	}
	return opts
}

// secretValues are the config values that must not appear in logs.
// Single-character values such as the offline token "0" are not treated
// as secrets.
func secretValues(cfg config.Config) []string {
	var out []string
	for _, key := range cfg.Keys() {
		if isSensitiveKey(key) {
			if v := strings.TrimSpace(cfg[key]); len(v) > 1 {
				out = append(out, v)
			}
		}
	}
	return out
}
