package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/vk/fxbuild/internal/bundler"
	"github.com/vk/fxbuild/internal/config"
	"github.com/vk/fxbuild/internal/ctxlog"
	"github.com/vk/fxbuild/internal/notifier"
	"github.com/vk/fxbuild/internal/pkgmeta"
	"github.com/vk/fxbuild/internal/publish"
)

// Publisher uploads build outputs.
type Publisher interface {
	Publish(ctx context.Context, files []string) error
}

// Option customizes an App, mainly for tests.
type Option func(*App)

// WithNotifier replaces the notifier chosen from the project configuration.
func WithNotifier(n notifier.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithPublisher replaces the storage publisher.
func WithPublisher(p Publisher) Option {
	return func(a *App) {
		a.publisher = p
	}
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	profile   Profile
	project   *config.Project
	resource  string
	builder   *bundler.Builder
	notifier  notifier.Notifier
	publisher Publisher
	status    *buildStatus

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the .env
// file and the project file, resolves the resource name and wires the
// collaborators the selected profile needs.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if err := config.LoadEnvFile(resolve(appConfig.Root, appConfig.EnvFile)); err != nil {
		return nil, err
	}

	projectFile := appConfig.ProjectFile
	if projectFile == "" {
		projectFile = config.DefaultFile
	}
	project, err := loader.Load(ctx, resolve(appConfig.Root, projectFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	project.ApplyEnv(config.Environ())
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Project configuration loaded.", "notifier", project.Notifier)

	override := appConfig.ResourceName
	if override == "" {
		override = project.Resource
	}
	resource, err := pkgmeta.ResourceName(appConfig.Root, override)
	if err != nil {
		return nil, err
	}

	layout := bundler.Layout{
		Root:           appConfig.Root,
		ManifestPath:   project.Paths.Manifest,
		SourceDir:      project.Paths.Source,
		OutputDir:      project.Paths.Output,
		DescriptorPath: project.Paths.Descriptor,
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		profile:  appConfig.Mode.Profile(),
		project:  project,
		resource: resource,
		builder:  bundler.NewBuilder(layout),
		status:   &buildStatus{},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.notifier == nil {
		a.notifier, err = newNotifier(a.profile, project)
		if err != nil {
			return nil, err
		}
	}
	if a.publisher == nil && a.profile.Publish && project.Publish != nil {
		a.publisher, err = publish.New(*project.Publish, appConfig.Root)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("App wired.", "mode", appConfig.Mode, "resource", resource, "watch", a.profile.Watch, "notify", a.profile.Notify)
	return a, nil
}

// newNotifier creates the connection handle the profile asks for.
func newNotifier(profile Profile, project *config.Project) (notifier.Notifier, error) {
	if !profile.Notify {
		return notifier.Nop{}, nil
	}
	switch project.Notifier {
	case config.NotifierSocketIO:
		return notifier.NewSocketIO(project.SocketIO.URL, project.SocketIO.Namespace, project.SocketIO.Password)
	default:
		return notifier.NewRCON(project.RCON.Address, project.RCON.Password), nil
	}
}

// Resource returns the resource name used in ensure commands.
func (a *App) Resource() string {
	return a.resource
}

// Builder returns the application's builder. This is primarily for testing.
func (a *App) Builder() *bundler.Builder {
	return a.builder
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
